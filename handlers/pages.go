package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"Vidshelf/models"
	"Vidshelf/services"
)

const recentScanRuns = 10

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	counts, err := h.catalog.Counts(r.Context())
	if err != nil {
		serverError(w, r, "", err)
		return
	}

	data := struct {
		Page
		Counts services.CatalogCounts
		Status services.ScanStatus
	}{
		Page:   h.page(w, r, "/"),
		Counts: counts,
		Status: h.worker.Status(),
	}
	h.render(w, "index", data)
}

type MoviesData struct {
	Page
	Movies        []models.Movie
	AllGenres     []string
	AllYears        []int
	AllQualities    []string
	SelectedGenre   string
	SelectedYear    int
	SelectedQuality string
}

func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	allMovies, err := h.catalog.Movies(r.Context())
	if err != nil {
		serverError(w, r, "", err)
		return
	}

	selectedGenre := r.URL.Query().Get("genre")
	selectedYear, _ := strconv.Atoi(r.URL.Query().Get("year"))
	selectedQuality := r.URL.Query().Get("quality")

	data := MoviesData{
		Page:            h.page(w, r, "/movies"),
		Movies:          filterMovies(allMovies, selectedGenre, selectedYear, selectedQuality),
		AllGenres:       ExtractGenresFromMovies(allMovies),
		AllYears:        ExtractYearsFromMovies(allMovies),
		AllQualities:    ExtractQualitiesFromMovies(allMovies),
		SelectedGenre:   selectedGenre,
		SelectedYear:    selectedYear,
		SelectedQuality: selectedQuality,
	}
	h.render(w, "movies", data)
}

func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		serverError(w, r, "Movie not found", err)
		return
	}

	movie, err := h.catalog.Movie(r.Context(), id)
	if err != nil {
		serverError(w, r, "Movie not found", err)
		return
	}

	data := struct {
		Page
		Movie *models.Movie
	}{
		Page:  h.page(w, r, "/movies"),
		Movie: movie,
	}
	h.render(w, "movie", data)
}

func (h *Handler) TVShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.catalog.Shows(r.Context())
	if err != nil {
		serverError(w, r, "", err)
		return
	}

	data := struct {
		Page
		Shows []models.TVShow
	}{
		Page:  h.page(w, r, "/tv_shows"),
		Shows: shows,
	}
	h.render(w, "tv_shows", data)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		serverError(w, r, "Show not found", err)
		return
	}

	show, err := h.catalog.Show(r.Context(), id)
	if err != nil {
		serverError(w, r, "Show not found", err)
		return
	}

	seasons, err := h.catalog.Seasons(r.Context(), id)
	if err != nil {
		serverError(w, r, "Show not found", err)
		return
	}

	data := struct {
		Page
		Show    *models.TVShow
		Seasons []models.Season
	}{
		Page:    h.page(w, r, "/tv_shows"),
		Show:    show,
		Seasons: seasons,
	}
	h.render(w, "show", data)
}

func (h *Handler) Episode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		serverError(w, r, "Episode not found", err)
		return
	}

	episode, err := h.catalog.Episode(r.Context(), id)
	if err != nil {
		serverError(w, r, "Episode not found", err)
		return
	}

	show, err := h.catalog.Show(r.Context(), episode.ShowID)
	if err != nil {
		serverError(w, r, "Episode not found", err)
		return
	}

	data := struct {
		Page
		Episode *models.Episode
		Show    *models.TVShow
	}{
		Page:    h.page(w, r, "/tv_shows"),
		Episode: episode,
		Show:    show,
	}
	h.render(w, "episode", data)
}

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.List(r.Context())
	if err != nil {
		serverError(w, r, "", err)
		return
	}

	runs, err := h.history.Recent(r.Context(), recentScanRuns)
	if err != nil {
		slog.Error("Error getting scan history", "error", err)
		runs = []models.ScanRun{}
	}

	data := struct {
		Page
		Locations []models.MediaLocation
		Status    services.ScanStatus
		Runs      []models.ScanRun
	}{
		Page:      h.page(w, r, "/settings"),
		Locations: locations,
		Status:    h.worker.Status(),
		Runs:      runs,
	}
	h.render(w, "settings", data)
}
