package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"Vidshelf/models"
	"Vidshelf/services"
)

// Scan starts a background scan. It answers 202 whether or not one was
// already running.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.worker.Trigger() {
		slog.Info("Manual scan triggered")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

func (h *Handler) StopScan(w http.ResponseWriter, r *http.Request) {
	h.worker.Stop()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

func (h *Handler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.worker.Status()); err != nil {
		slog.Error("Error encoding scan status", "error", err)
	}
}

// AddSource registers the directory in the source-path form field as a
// source of the kind named by source-type.
func (h *Handler) AddSource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}

	mediaType := models.MediaType(r.PostFormValue("source-type"))
	mediaPath := r.PostFormValue("source-path")

	if !mediaType.Valid() {
		h.flash(w, r, "error", fmt.Sprintf("Unknown source type %q.", mediaType))
		http.Error(w, "Unknown source type.", http.StatusBadRequest)
		return
	}

	loc, err := h.locations.Add(r.Context(), mediaType, mediaPath)
	switch {
	case errors.Is(err, services.ErrInvalidLocation):
		h.flash(w, r, "error", "No such path on the file system: "+mediaPath)
		http.Error(w, "No such path on the file system.", http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrLocationExists):
		h.flash(w, r, "error", "Source already exists: "+mediaPath)
		http.Error(w, "Source already exists.", http.StatusConflict)
		return
	case err != nil:
		serverError(w, r, "", err)
		return
	}

	h.flash(w, r, "success", fmt.Sprintf("Added %s source %s.", loc.Type, loc.Path))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("Created"))
}

func (h *Handler) RemoveSource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		serverError(w, r, "Source not found", err)
		return
	}

	if err := h.locations.Remove(r.Context(), id); err != nil {
		serverError(w, r, "Source not found", err)
		return
	}

	h.flash(w, r, "success", fmt.Sprintf("Removed source %d.", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if err := h.sessions.AddFlash(w, r, kind, message); err != nil {
		slog.Warn("Failed to save flash message", "error", err)
	}
}

func Ping(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("pong"))
}
