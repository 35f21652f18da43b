package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

// maxUploadMemory is how much of a multipart body is kept in memory; the rest spills to disk.
const maxUploadMemory = 32 << 20

type logListPage struct {
	usecase.LogListView
	Deleting map[string]bool
}

// logListHandler renders the list. The list is fetched on every visit except
// when local=1, which reuses the session copy so searching and deleting do not
// re-fetch.
func (s *Server) logListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	list := sess.logList()
	if list == nil || r.URL.Query().Get("local") != "1" {
		list = s.uc.LogList.Load(ctx)
		sess.setLogList(list)
	}
	list.SetSearch(r.URL.Query().Get("q"))

	view := list.View()
	deleting := make(map[string]bool)
	for _, l := range view.Visible {
		if s.uc.LogList.IsDeleting(l.ID) {
			deleting[l.ID] = true
		}
	}

	s.render.render(w, r, http.StatusOK, "logs.html", "Construction Logs", logListPage{
		LogListView: view,
		Deleting:    deleting,
	})
}

type logDetailPage struct {
	*usecase.LogDetail
	ShowUploader bool
	Uploading    bool
}

func (s *Server) logDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail := s.uc.LogDetail.Load(r.Context(), id)

	status := http.StatusOK
	if detail.NotFound {
		status = http.StatusNotFound
	}

	title := "Log"
	if detail.Log != nil {
		title = detail.Log.Title
	}
	s.render.render(w, r, status, "log_detail.html", title, logDetailPage{
		LogDetail:    detail,
		ShowUploader: r.URL.Query().Get("upload") == "1",
		Uploading:    s.uc.Upload.IsUploading(id),
	})
}

type confirmPage struct {
	Message string
	Action  string
	Cancel  string
	Busy    bool
}

func (s *Server) confirmDeleteLogHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.render.render(w, r, http.StatusOK, "confirm.html", "Delete Log", confirmPage{
		Message: usecase.MsgDeleteLogConfirm,
		Action:  "/logs/" + url.PathEscape(id) + "/delete",
		Cancel:  returnPath(r, "/logs/"+url.PathEscape(id)),
		Busy:    s.uc.LogList.IsDeleting(id),
	})
}

// deleteLogHandler deletes after the confirm page. The list view keeps its
// session copy and drops the row locally; the detail view goes back to the list.
func (s *Server) deleteLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	id := chi.URLParam(r, "id")
	back := returnPath(r, "/logs/"+url.PathEscape(id))

	err := s.uc.LogList.Delete(ctx, sess.logList(), id, confirmed(r))
	switch {
	case errors.Is(err, usecase.ErrNotConfirmed):
		redirect(w, r, back)
	case err != nil:
		sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgDeleteLogFailed))
		redirect(w, r, back)
	default:
		redirect(w, r, "/logs?local=1")
	}
}

func (s *Server) confirmDeleteAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	aid := chi.URLParam(r, "aid")
	s.render.render(w, r, http.StatusOK, "confirm.html", "Delete Attachment", confirmPage{
		Message: usecase.MsgDeleteFileConfirm,
		Action:  "/logs/" + url.PathEscape(id) + "/attachments/" + url.PathEscape(aid) + "/delete",
		Cancel:  "/logs/" + url.PathEscape(id),
		Busy:    s.uc.LogDetail.IsDeletingAttachment(aid),
	})
}

// deleteAttachmentHandler deletes one attachment. The detail page it
// redirects to re-fetches the whole log.
func (s *Server) deleteAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	aid := chi.URLParam(r, "aid")

	if err := s.uc.LogDetail.DeleteAttachment(ctx, nil, aid, confirmed(r)); err != nil && !errors.Is(err, usecase.ErrNotConfirmed) {
		sessionFrom(ctx).addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgDeleteFileFailed))
	}
	redirect(w, r, "/logs/"+url.PathEscape(id))
}

// uploadHandler sends the picked files one by one. On full success the
// uploader closes; otherwise it stays open with the failure alert.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	id := chi.URLParam(r, "id")
	detail := "/logs/" + url.PathEscape(id)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to parse upload form", goerr.V(usecase.LogIDKey, id)), "bad upload request")
		sess.addFlash(flashAlert, usecase.MsgUploadFailed)
		redirect(w, r, detail+"?upload=1")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to remove upload temp files"), "cleanup failed")
		}
	}()

	files := uploadFiles(r.MultipartForm.File["files"])
	if len(files) == 0 {
		redirect(w, r, detail+"?upload=1")
		return
	}

	result, err := s.uc.Upload.Upload(ctx, id, files)
	if err != nil {
		sess.addFlash(flashAlert, usecase.AlertMessage(err, usecase.MsgUploadFailed))
		redirect(w, r, detail+"?upload=1")
		return
	}

	sess.addFlash(flashNotice, strconv.Itoa(len(result.Uploaded))+" file(s) uploaded.")
	redirect(w, r, detail)
}

func uploadFiles(headers []*multipart.FileHeader) []usecase.UploadFile {
	files := make([]usecase.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, usecase.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

// uploadProxyHandler streams a stored file from the backend. download=1 asks
// the browser to save it under name, or under the stored file name.
func (s *Server) uploadProxyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := chi.URLParam(r, "filename")

	d, err := s.uc.LogDetail.Download(ctx, filename)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.render.renderError(w, r, http.StatusNotFound, "File not found")
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusBadGateway)
		return
	}
	defer safe.Close(ctx, d.Body)

	if d.ContentType != "" {
		w.Header().Set("Content-Type", d.ContentType)
	}
	if d.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.ContentLength, 10))
	}
	if r.URL.Query().Get("download") == "1" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = filename
		}
		w.Header().Set("Content-Disposition", attachmentDisposition(name))
	}
	w.WriteHeader(http.StatusOK)
	safe.Copy(ctx, w, d.Body)
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}

// returnPath reads a same-site return path from the form, falling back to def.
func returnPath(r *http.Request, def string) string {
	p := r.FormValue("return")
	if p == "" || p[0] != '/' || (len(p) > 1 && (p[1] == '/' || p[1] == '\\')) {
		return def
	}
	return p
}
