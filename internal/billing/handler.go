package billing

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/handlers"
	"github.com/cyberforge/cyberforge/pkg/routes"
)

// Handler provides HTTP endpoints for billing operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "billing"),
	}
}

// Routes returns the route group definition for billing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/billing",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/snapshot", Handler: h.Snapshot},
			{Method: "POST", Pattern: "/tier", Handler: h.SetTier},
		},
	}
}

// Snapshot returns the usage snapshot for the user_id query parameter.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("user_id required: %w", err))
		return
	}

	snapshot, err := h.sys.GetUsageSnapshot(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snapshot)
}

// SetTier records a subscription tier change from a SetTierCommand JSON body.
func (h *Handler) SetTier(w http.ResponseWriter, r *http.Request) {
	var cmd SetTierCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sub, err := h.sys.SetTier(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, sub)
}
