// Package view renders the server-side HTML pages and carries flash messages
// across redirects.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// Page is the value every template executes against.
type Page struct {
	Title     string
	User      *models.User
	Messages  []models.Message
	CSRFField template.HTML
	Data      any
}

// Renderer owns the parsed page templates.
type Renderer struct {
	pages  map[string]*template.Template
	flash  *FlashStore
	logger *slog.Logger
}

// FuncMap returns the helpers made available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"input":    Input,
		"addClass": func(css string, f Field) Field { return AddClass(f, css) },
		"addAttr":  func(arg string, f Field) Field { return AddAttr(f, arg) },
		"widget":   func(f Field) template.HTML { return f.HTML() },
		"date":     formatDate,
		"selected": func(a, b int64) bool { return a == b },
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

// New parses every page under templates/ together with the shared layout.
func New(flash *FlashStore, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	funcs := FuncMap()
	pages := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == layoutFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tpl, err := template.New(layoutFile).Funcs(funcs).ParseFS(templateFS,
			path.Join("templates", layoutFile), path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = tpl
	}

	return &Renderer{pages: pages, flash: flash, logger: logger}, nil
}

// Has reports whether a page template exists.
func (v *Renderer) Has(page string) bool {
	_, ok := v.pages[page]
	return ok
}

// Render writes page with status 200. Messages stored by a previous redirect
// are shown together with msgs and then discarded.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data any, msgs ...models.Message) {
	v.RenderStatus(w, r, http.StatusOK, page, data, msgs...)
}

// RenderStatus is Render with an explicit status code.
func (v *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any, msgs ...models.Message) {
	tpl, ok := v.pages[page]
	if !ok {
		v.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	stored := v.flash.Read(r)
	p := Page{
		Title:     pageTitle(page),
		User:      session.UserFromContext(r.Context()),
		Messages:  append(stored, msgs...),
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		v.logger.Error("render", slog.String("page", page), slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if len(stored) > 0 {
		v.flash.Clear(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		v.logger.Error("write response", slog.Any("err", err))
	}
}

// Redirect stores msgs for the next page and answers 303 See Other.
func (v *Renderer) Redirect(w http.ResponseWriter, r *http.Request, url string, msgs ...models.Message) {
	pending := append(v.flash.Read(r), msgs...)
	if err := v.flash.Write(w, pending); err != nil {
		v.logger.Error("store flash", slog.Any("err", err))
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// ErrorData feeds the error page.
type ErrorData struct {
	Status  int
	Message string
}

func (v *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	v.RenderStatus(w, r, http.StatusNotFound, "error", ErrorData{Status: http.StatusNotFound, Message: "The page you requested does not exist."})
}

func (v *Renderer) Forbidden(w http.ResponseWriter, r *http.Request) {
	v.RenderStatus(w, r, http.StatusForbidden, "error", ErrorData{Status: http.StatusForbidden, Message: "You do not have permission to view this page."})
}

// InternalError logs err and renders a generic page without leaking details.
func (v *Renderer) InternalError(w http.ResponseWriter, r *http.Request, err error) {
	v.logger.Error("internal_error", slog.String("path", r.URL.Path), slog.Any("err", err))
	v.RenderStatus(w, r, http.StatusInternalServerError, "error", ErrorData{Status: http.StatusInternalServerError, Message: "Something went wrong."})
}

var titles = map[string]string{
	"home":          "Home",
	"register":      "Register",
	"login":         "Log in",
	"profile":       "Profile",
	"profile_edit":  "Edit profile",
	"poll_list":     "Polls",
	"poll_detail":   "Poll",
	"poll_create":   "New poll",
	"choice_create": "New choice",
	"error":         "Error",
}

func pageTitle(page string) string {
	if t, ok := titles[page]; ok {
		return t
	}
	return page
}
