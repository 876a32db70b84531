// Package httphandler is the HTTP driving adapter that serves the webhook
// receiver and the dashboard read API.
package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/hookboard/internal/application"
	"github.com/ericfisherdev/hookboard/internal/domain/model"
)

// maxWebhookBody caps the accepted webhook payload size at 1 MiB.
const maxWebhookBody = 1 << 20

// Handler is the HTTP driving adapter for the webhook and events API.
type Handler struct {
	events        *application.EventService
	webhookSecret string
	logger        *slog.Logger
}

// NewHandler creates a Handler. An empty webhookSecret disables signature
// verification.
func NewHandler(events *application.EventService, webhookSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		events:        events,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// RegisterAPIRoutes registers the webhook and API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /webhook", h.ReceiveWebhook)
	mux.HandleFunc("GET /api/events", h.ListEvents)
	mux.HandleFunc("POST /api/clear", h.ClearEvents)
	mux.HandleFunc("GET /health", h.Health)
}

// ReceiveWebhook accepts a webhook delivery and stores it with duplicate
// suppression. Payloads carrying an X-GitHub-Event header are parsed as
// native GitHub webhooks; anything else is treated as the simplified JSON
// format. Responds 201 on insert, 200 on a suppressed duplicate.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	if h.webhookSecret != "" {
		if !verifySignature(body, r.Header.Get("X-Hub-Signature-256"), h.webhookSecret) {
			h.logger.Warn("invalid webhook signature")
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty payload")
		return
	}

	var in application.IngestInput
	if ghEvent := r.Header.Get("X-GitHub-Event"); ghEvent != "" {
		normalized, outcome, err := normalizeGitHubEvent(ghEvent, r.Header.Get("X-GitHub-Delivery"), body)
		if err != nil {
			h.logger.Error("failed to parse github webhook", "event", ghEvent, "error", err)
			writeError(w, http.StatusBadRequest, "invalid GitHub webhook payload")
			return
		}
		switch outcome {
		case githubEventPing:
			writeJSON(w, http.StatusOK, WebhookResponse{Status: "pong", Message: "ping received"})
			return
		case githubEventIgnored:
			h.logger.Info("ignoring unsupported github event", "event", ghEvent)
			writeJSON(w, http.StatusOK, WebhookResponse{Status: "ignored", Message: fmt.Sprintf("event type %q not tracked", ghEvent)})
			return
		}
		in = normalized
	} else {
		var req WebhookRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in = application.IngestInput{
			RequestID:  req.RequestID,
			EventType:  req.EventType,
			Author:     req.Author,
			Action:     req.Action,
			FromBranch: req.FromBranch,
			ToBranch:   req.ToBranch,
			Branch:     req.Branch,
			Timestamp:  req.Timestamp,
		}
	}

	event, created, err := h.events.Ingest(r.Context(), in)
	if err != nil {
		if errors.Is(err, model.ErrInvalidEvent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to store event", "request_id", in.RequestID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !created {
		h.logger.Warn("duplicate event ignored", "request_id", event.RequestID)
		writeJSON(w, http.StatusOK, WebhookResponse{
			Status:    "duplicate",
			Message:   "event already exists (duplicate ignored)",
			RequestID: event.RequestID,
		})
		return
	}

	h.logger.Info("event stored", "request_id", event.RequestID, "summary", event.Summary())
	writeJSON(w, http.StatusCreated, WebhookResponse{
		Status:    "success",
		Message:   "event stored successfully",
		RequestID: event.RequestID,
	})
}

// ListEvents returns recent events for the dashboard, newest first. The
// optional since parameter (RFC 3339) sets a timestamp floor for incremental
// polling; limit caps the result. Malformed parameters are logged and
// ignored so a confused dashboard still gets data.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.logger.Warn("ignoring invalid since parameter", "since", v)
		} else {
			since = &parsed
		}
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.logger.Warn("ignoring invalid limit parameter", "limit", v)
		} else {
			limit = parsed
		}
	}

	events, err := h.events.Recent(r.Context(), limit, since)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := EventsResponse{
		Status:     "success",
		Count:      len(events),
		Events:     make([]EventResponse, 0, len(events)),
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	}
	for _, event := range events {
		resp.Events = append(resp.Events, toEventResponse(event))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearEvents deletes all stored events and reports the number removed.
func (h *Handler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.events.Clear(r.Context())
	if err != nil {
		h.logger.Error("failed to clear events", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("events cleared", "deleted", deleted)
	writeJSON(w, http.StatusOK, ClearResponse{
		Status:       "success",
		Message:      fmt.Sprintf("cleared %d events", deleted),
		DeletedCount: deleted,
	})
}

// Health reports liveness and database reachability. The response is always
// HTTP 200; database trouble is surfaced in the body so orchestrators do not
// kill the app while SQLite is briefly locked.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Database:  h.events.DatabaseStatus(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
