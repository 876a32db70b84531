// Package web is the HTML GUI driving adapter. The dashboard is a static
// page whose polling loop runs client-side against the events API.
package web

import (
	"log/slog"
	"net/http"
)

// Handler serves the dashboard page.
type Handler struct {
	page   []byte
	logger *slog.Logger
}

// NewHandler creates a Handler with the dashboard page loaded from the
// embedded filesystem.
func NewHandler(logger *slog.Logger) (*Handler, error) {
	page, err := StaticFS.ReadFile("static/index.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		page:   page,
		logger: logger,
	}, nil
}

// Dashboard renders the main dashboard page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(h.page); err != nil {
		h.logger.Error("failed to write dashboard page", "error", err)
	}
}
