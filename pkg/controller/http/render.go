package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"logs.html",
	"log_detail.html",
	"log_form.html",
	"confirm.html",
	"reports.html",
	"settings.html",
	"error.html",
}

var templateFuncs = template.FuncMap{
	"date":         func(ts model.Timestamp) string { return ts.Date() },
	"datePart":     model.DatePart,
	"join":         strings.Join,
	"statuses":     types.AllStatuses,
	"priorities":   types.AllPriorities,
	"categories":   types.AllCategories,
	"projectTypes": model.ProjectTypes,
	"settingsTabs": types.AllSettingsTabs,
	"uploadHint":   func() string { return usecase.UploadHint },
	"uploadAccept": func() string { return usecase.UploadAccept },
	"emptyHint":    func() string { return usecase.MsgEmptyReportHint },
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse template", goerr.V("template", name))
		}
		r.pages[name] = t
	}
	return r, nil
}

// page is what every template receives. Data holds the view specific state.
type page struct {
	Title   string
	Nav     []model.NavItem
	Flashes []flash
	Data    any
}

// render writes the named page with status. The page is rendered to a buffer
// first so a template failure can still produce an error response.
func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := rd.pages[name]
	if !ok {
		errutil.HandleHTTP(r.Context(), w, goerr.New("unknown template", goerr.V("template", name)), http.StatusInternalServerError)
		return
	}

	p := page{
		Title:   title,
		Nav:     model.Navigation(r.URL.Path),
		Flashes: sessionFrom(r.Context()).takeFlashes(),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to render template", goerr.V("template", name)), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, buf.Bytes())
}

type errorPage struct {
	Status  int
	Message string
	Back    string
}

func (rd *renderer) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.render(w, r, status, "error.html", http.StatusText(status), errorPage{
		Status:  status,
		Message: message,
		Back:    "/logs",
	})
}

// redirect sends the browser to url after a form post.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
