package recommendations

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/handlers"
	"github.com/cyberforge/cyberforge/pkg/pagination"
	"github.com/cyberforge/cyberforge/pkg/routes"
)

// Handler provides HTTP endpoints for recommendation engine operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "recommendations"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for recommendation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/recommendations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/generate/threats", Handler: h.GenerateThreats},
			{Method: "POST", Pattern: "/generate/cost", Handler: h.GenerateCost},
			{Method: "POST", Pattern: "/refresh", Handler: h.Refresh},
			{Method: "POST", Pattern: "/{id}/apply", Handler: h.Apply},
			{Method: "POST", Pattern: "/{id}/export", Handler: h.Export},
		},
	}
}

// List returns a paginated list of recommendations, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single recommendation by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// GenerateThreats runs threat-based generation for a user. A window with no
// intelligence records yields 204.
func (h *Handler) GenerateThreats(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateThreatCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.GenerateThreatBased(r.Context(), cmd)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// GenerateCost runs cost optimization generation for a user. No saving above
// the configured threshold yields 204.
func (h *Handler) GenerateCost(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateCostCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.GenerateCostOptimization(r.Context(), cmd)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// Refresh runs both generators for a user and returns whatever they produced,
// possibly an empty list.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var cmd RefreshCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	recs, err := h.sys.Refresh(r.Context(), cmd.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, recs)
}

// Apply marks a recommendation as applied. Re-applying returns the stored
// record unchanged with 200.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	rec, err := h.sys.MarkApplied(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Export writes the recommendation's assessment report to blob storage and
// returns the stored key.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	result, err := h.sys.Export(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// respondGenerationError writes generation failures. ErrNoSignal is a clean
// outcome and must not carry an error body.
func (h *Handler) respondGenerationError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoSignal) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
