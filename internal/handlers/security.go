package handlers

import (
	"net/http"

	"github.com/solrent/solrent/internal/security"
	pkghttp "github.com/solrent/solrent/pkg/http"
)

// SecurityHandler exposes the in-memory security event feed. Routes using it
// sit behind the admin role.
type SecurityHandler struct {
	monitor *security.Monitor
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(monitor *security.Monitor) *SecurityHandler {
	return &SecurityHandler{monitor: monitor}
}

// ListEvents handles GET /security/events. Events come back oldest first;
// ?type= narrows to one event type and ?limit= caps the count.
func (h *SecurityHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), security.DefaultEventCapacity, security.DefaultEventCapacity)

	var events []security.Event
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		events = h.monitor.EventsByType(eventType, limit)
	} else {
		events = h.monitor.Events(limit)
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
