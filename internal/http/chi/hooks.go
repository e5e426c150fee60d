package chi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/VindiceCode/bonzobuddy/receiver"
	"github.com/go-chi/chi/v5"
)

/* HTTP layer DTOs for the mock receiver API
 * Separate from domain entities to avoid leaking internal structure
 */

// hookResponse represents the API response when accepting a webhook
type hookResponse struct {
	EventID     string `json:"event_id"`
	Integration string `json:"integration"`
}

// receivedResponse represents the inspection endpoint payload
type receivedResponse struct {
	Integration string           `json:"integration"`
	Count       int              `json:"count"`
	Events      []receiver.Event `json:"events"`
}

// postHook handles POST /hooks/:integration
func postHook(inbox *receiver.Inbox) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		integration := chi.URLParam(r, "integration")
		if integration == "" {
			http.Error(w, "integration is required", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		headers := make(map[string]string)
		for key, values := range r.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		event, status, err := inbox.Receive(integration, body, headers)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		if status < 200 || status >= 300 {
			// Injected failure, answer with an empty body like a broken endpoint
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(hookResponse{
			EventID:     event.ID,
			Integration: event.Integration,
		})
	})
}

// getReceived handles GET /hooks/:integration/received
func getReceived(inbox *receiver.Inbox) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		integration := chi.URLParam(r, "integration")
		events := inbox.List(integration)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(receivedResponse{
			Integration: integration,
			Count:       len(events),
			Events:      events,
		})
	})
}

// deleteReceived handles DELETE /hooks/:integration/received
func deleteReceived(inbox *receiver.Inbox) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		integration := chi.URLParam(r, "integration")
		inbox.Reset(integration)
		w.WriteHeader(http.StatusNoContent)
	})
}
