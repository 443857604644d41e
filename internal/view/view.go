package view

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kalenderium/internal/http/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutName = "layout.html"

var funcMap = template.FuncMap{
	"formatDate": func(value interface{}) string {
		return formatTime(value, "2006-01-02")
	},
	"formatDateTime": func(value interface{}) string {
		return formatTime(value, "2006-01-02 15:04")
	},
	"add": func(a, b int) int {
		return a + b
	},
}

func formatTime(value interface{}, layout string) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(layout)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(layout)
	default:
		return ""
	}
}

type PageData struct {
	Title         string
	Route         string
	Authenticated bool
	Data          interface{}
	Error         string
	Success       string
	CSRFToken     string
}

// Renderer executes page templates, each parsed together with the layout.
type Renderer struct {
	templates map[string]*template.Template
	log       *zap.Logger
}

func New(log *zap.Logger) (*Renderer, error) {
	return NewFromFS(templateFS, "templates", log)
}

func NewFromFS(fsys fs.FS, dir string, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	layoutPath := path.Join(dir, layoutName)
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := path.Base(page)
		if name == layoutName {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(fsys, layoutPath, page)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		templates[name] = tmpl
	}
	return &Renderer{templates: templates, log: log}, nil
}

func (v *Renderer) Has(name string) bool {
	_, ok := v.templates[name]
	return ok
}

func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data PageData) {
	v.RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus fills the request-derived fields of data and writes the page.
func (v *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	if state := middleware.SessionStateFromContext(r.Context()); state != nil {
		data.Authenticated = state.HasToken()
	}
	if token := middleware.CSRFTokenFromContext(r); token != "" {
		data.CSRFToken = token
	}
	if data.Route == "" {
		data.Route = middleware.RouteNameFromContext(r.Context())
	}
	if data.Success == "" {
		data.Success = strings.TrimSpace(r.URL.Query().Get("success"))
	}
	if data.Error == "" {
		data.Error = strings.TrimSpace(r.URL.Query().Get("error"))
	}

	tmpl, ok := v.templates[name]
	if !ok {
		v.log.Error("template not found", zap.String("template", name))
		http.Error(w, "Template not found: "+name, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutName, data); err != nil {
		v.log.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
