package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

const (
	// DefaultTimeout bounds every backend call that does not stream a body.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "sitelog"
	maxErrorBody     = 16 << 10
)

// Client talks to the construction log REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

var _ interfaces.Backend = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) {
		x.httpClient = c
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(x *Client) {
		x.timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(x *Client) {
		x.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:3001
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend base URL", goerr.V("base_url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("backend base URL must be http or https", goerr.V("base_url", baseURL))
	}
	if u.Host == "" {
		return nil, goerr.New("backend base URL has no host", goerr.V("base_url", baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	raw := strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u := *c.baseURL
	if p, err := url.PathUnescape(raw); err == nil {
		u.Path = p
	}
	u.RawPath = raw
	return u.String()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build backend request", goerr.V("method", method), goerr.V("url", endpoint))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body", goerr.V("url", endpoint))
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, endpoint, body, contentType)
	if err != nil {
		return err
	}
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "backend request failed",
			goerr.V("method", req.Method),
			goerr.V("url", req.URL.String()),
		)
	}
	defer safe.CloseBody(ctx, resp.Body)

	logging.From(ctx).Debug("backend call",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return goerr.Wrap(readAPIError(resp), "backend returned error",
			goerr.V("method", req.Method),
			goerr.V("url", req.URL.String()),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode backend response",
			goerr.V("method", req.Method),
			goerr.V("url", req.URL.String()),
		)
	}
	return nil
}

// ListLogs fetches every log. GET /api/logs
func (c *Client) ListLogs(ctx context.Context) ([]*model.Log, error) {
	var logs []*model.Log
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "logs"), nil, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*model.Log{}
	}
	return logs, nil
}

// GetLog fetches one log with its attachments. GET /api/logs/{id}
func (c *Client) GetLog(ctx context.Context, id string) (*model.Log, error) {
	var log model.Log
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "logs", id), nil, &log); err != nil {
		return nil, goerr.Wrap(err, "failed to get log", goerr.V(model.LogIDKey, id))
	}
	return &log, nil
}

// CreateLog creates a log. POST /api/logs
func (c *Client) CreateLog(ctx context.Context, input *model.LogInput) (*model.Log, error) {
	var log model.Log
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "logs"), input, &log); err != nil {
		return nil, goerr.Wrap(err, "failed to create log")
	}
	return &log, nil
}

// UpdateLog replaces the editable fields of a log. PUT /api/logs/{id}
func (c *Client) UpdateLog(ctx context.Context, id string, input *model.LogInput) (*model.Log, error) {
	var log model.Log
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint("api", "logs", id), input, &log); err != nil {
		return nil, goerr.Wrap(err, "failed to update log", goerr.V(model.LogIDKey, id))
	}
	return &log, nil
}

// DeleteLog removes a log. DELETE /api/logs/{id}
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "logs", id), nil, nil); err != nil {
		return goerr.Wrap(err, "failed to delete log", goerr.V(model.LogIDKey, id))
	}
	return nil
}

// UploadAttachment sends one file as the multipart field "file".
// POST /api/logs/{logId}/attachments
func (c *Client) UploadAttachment(ctx context.Context, logID, filename, contentType string, content io.Reader) (*model.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(filename)+`"`)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create multipart part")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, goerr.Wrap(err, "failed to buffer attachment", goerr.V("filename", filename))
	}
	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finish multipart body")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("api", "logs", logID, "attachments"), &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var attachment model.Attachment
	if err := c.send(ctx, req, &attachment); err != nil {
		return nil, goerr.Wrap(err, "failed to upload attachment",
			goerr.V(model.LogIDKey, logID),
			goerr.V("filename", filename),
		)
	}
	return &attachment, nil
}

// DeleteAttachment removes one attachment. DELETE /api/attachments/{id}
func (c *Client) DeleteAttachment(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "attachments", id), nil, nil); err != nil {
		return goerr.Wrap(err, "failed to delete attachment", goerr.V("attachment_id", id))
	}
	return nil
}

// OpenUpload streams a stored file. GET /uploads/{filename}
// The caller must close the returned body. No timeout is applied beyond ctx.
func (c *Client) OpenUpload(ctx context.Context, filename string) (*model.Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("uploads", filename), nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Del("Accept")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch upload", goerr.V("filename", filename))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer safe.CloseBody(ctx, resp.Body)
		return nil, goerr.Wrap(readAPIError(resp), "backend returned error", goerr.V("filename", filename))
	}

	return &model.Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// Summarize asks the backend AI for a summary. POST /api/ai/summarize
func (c *Client) Summarize(ctx context.Context, description string) (string, error) {
	in := struct {
		Description string `json:"description"`
	}{Description: description}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "ai", "summarize"), in, &out); err != nil {
		return "", goerr.Wrap(err, "failed to summarize description")
	}
	return out.Summary, nil
}

// GetReports lists report types and saved reports. GET /api/reports
func (c *Client) GetReports(ctx context.Context) (*model.ReportsIndex, error) {
	var index model.ReportsIndex
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "reports"), nil, &index); err != nil {
		return nil, goerr.Wrap(err, "failed to get reports")
	}
	if index.ReportTypes == nil {
		index.ReportTypes = []model.ReportType{}
	}
	if index.SavedReports == nil {
		index.SavedReports = []model.SavedReport{}
	}
	return &index, nil
}

// GenerateReport builds a report. POST /api/reports/generate
func (c *Client) GenerateReport(ctx context.Context, req *model.GenerateReportRequest) (*model.GeneratedReport, error) {
	var report model.GeneratedReport
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "reports", "generate"), req, &report); err != nil {
		return nil, goerr.Wrap(err, "failed to generate report",
			goerr.V("report_type", req.ReportType),
			goerr.V("duration", req.Duration),
		)
	}
	if report.Logs == nil {
		report.Logs = []model.ReportLog{}
	}
	return &report, nil
}

// SaveReport persists a generated report under a name. POST /api/reports/save
func (c *Client) SaveReport(ctx context.Context, req *model.SaveReportRequest) (*model.SavedReport, error) {
	var saved model.SavedReport
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "reports", "save"), req, &saved); err != nil {
		return nil, goerr.Wrap(err, "failed to save report", goerr.V("name", req.Name))
	}
	return &saved, nil
}

// DeleteSavedReport removes a saved report. DELETE /api/reports/{id}
func (c *Client) DeleteSavedReport(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "reports", id), nil, nil); err != nil {
		return goerr.Wrap(err, "failed to delete saved report", goerr.V(model.ReportIDKey, id))
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// readAPIError builds an APIError from a failed response, taking the message from
// the JSON "message" or "error" field when present.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
