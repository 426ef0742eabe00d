package server

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Vidshelf/handlers"
	"Vidshelf/middleware"
	"Vidshelf/web"
)

// NewRouter wires every route. mediaDir is served under /media/ so the
// per-location symlinks resolve to the source directories.
func NewRouter(h *handlers.Handler, mediaDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)

	r.Get("/ping", handlers.Ping)
	r.Handle("/metrics", promhttp.Handler())

	staticFS, _ := fs.Sub(web.Static, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	r.Get("/", h.Index)
	r.Get("/movies", h.Movies)
	r.Get("/movies/{id}", h.Movie)
	r.Get("/tv_shows", h.TVShows)
	r.Get("/tv_shows/{id}", h.Show)
	r.Get("/tv_shows/show/{id}", h.Show)
	r.Get("/tv_shows/episode/{id}", h.Episode)
	r.Get("/settings", h.Settings)

	r.Post("/scan", h.Scan)
	r.Post("/scan/stop", h.StopScan)
	r.Get("/scan/status", h.ScanStatus)
	r.Put("/add_source", h.AddSource)
	r.Delete("/sources/{id}", h.RemoveSource)

	return r
}
