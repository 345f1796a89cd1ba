package intel

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/handlers"
	"github.com/cyberforge/cyberforge/pkg/pagination"
	"github.com/cyberforge/cyberforge/pkg/routes"
)

// Handler provides HTTP endpoints for intelligence record operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "intel"),
		pagination: pagination,
	}
}

// WithMaxUploadSize bounds the bulk ingest request body size.
func (h *Handler) WithMaxUploadSize(size int64) *Handler {
	h.maxUploadSize = size
	return h
}

// Routes returns the route group definition for intel record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/intel",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/bulk", Handler: h.CreateBatch},
		},
	}
}

// List returns a paginated list of intel records with optional query parameter filters.
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

// Find returns a single intel record by its UUID path parameter.
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

// Create ingests a single intel record from a CreateCommand JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// CreateBatch ingests multiple intel records from a JSON array body.
// The body size is bounded by the configured max upload size.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	var cmds []CreateCommand
	if err := json.NewDecoder(body).Decode(&cmds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	records, err := h.sys.CreateBatch(r.Context(), cmds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, records)
}
