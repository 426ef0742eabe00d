package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Vidshelf/services"
	"Vidshelf/web"
)

// Handler serves the HTML pages and the scan/source actions.
type Handler struct {
	catalog   *services.Catalog
	locations *services.Locations
	worker    *services.ScanWorker
	history   *services.ScanHistory
	sessions  *services.SessionStore

	pages map[string]*template.Template
}

// Services bundles what the handlers depend on.
type Services struct {
	Catalog   *services.Catalog
	Locations *services.Locations
	Worker    *services.ScanWorker
	History   *services.ScanHistory
	Sessions  *services.SessionStore
}

var pageNames = []string{"index", "movies", "movie", "tv_shows", "show", "episode", "settings"}

// New parses every page template up front so a broken template fails at startup.
func New(s Services) (*Handler, error) {
	h := &Handler{
		catalog:   s.Catalog,
		locations: s.Locations,
		worker:    s.Worker,
		history:   s.History,
		sessions:  s.Sessions,
		pages:     make(map[string]*template.Template, len(pageNames)),
	}

	funcMap := GetFuncMap()
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(web.Templates,
			"templates/layouts/base.html",
			"templates/components/navigation.html",
			"templates/pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		h.pages[name] = tmpl
	}
	return h, nil
}

// Page carries the fields the base layout and navigation read.
type Page struct {
	CurrentPage string
	Flashes     []services.Flash
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, current string) Page {
	return Page{CurrentPage: current, Flashes: h.sessions.Flashes(w, r)}
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[name].ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("Error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// serverError logs err and answers 404 for missing rows and 500 otherwise.
func serverError(w http.ResponseWriter, r *http.Request, notFoundMsg string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, notFoundMsg, http.StatusNotFound)
		return
	}
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// idParam reads the {id} URL parameter. Malformed ids are reported as not found.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q: %w", chi.URLParam(r, "id"), services.ErrNotFound)
	}
	return id, nil
}
