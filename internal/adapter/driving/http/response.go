package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/hookboard/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// WebhookRequest is the simplified JSON body accepted by the webhook
// endpoint when the sender is not GitHub itself (e.g. a CI workflow step).
type WebhookRequest struct {
	RequestID  string `json:"request_id"`
	EventType  string `json:"event_type"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Branch     string `json:"branch"`
	Timestamp  string `json:"timestamp"`
}

// WebhookResponse is the JSON body returned by the webhook endpoint.
type WebhookResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// EventResponse is the JSON representation of a stored event.
type EventResponse struct {
	ID         int64  `json:"id"`
	RequestID  string `json:"request_id"`
	EventType  string `json:"event_type"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Branch     string `json:"branch"`
	Timestamp  string `json:"timestamp"`
	CreatedAt  string `json:"created_at"`
}

// EventsResponse is the JSON body returned by the events list endpoint.
// ServerTime lets the dashboard advance its incremental cursor without
// trusting the browser clock.
type EventsResponse struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Events     []EventResponse `json:"events"`
	ServerTime string          `json:"server_time"`
}

// ClearResponse is the JSON body returned by the clear endpoint.
type ClearResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// toEventResponse converts a domain Event to its JSON response representation.
func toEventResponse(event model.Event) EventResponse {
	return EventResponse{
		ID:         event.ID,
		RequestID:  event.RequestID,
		EventType:  string(event.Type),
		Author:     event.Author,
		Action:     event.Action,
		FromBranch: event.FromBranch,
		ToBranch:   event.ToBranch,
		Branch:     event.Branch,
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
		CreatedAt:  event.CreatedAt.UTC().Format(time.RFC3339),
	}
}
