package client

import (
	"github.com/gin-gonic/gin"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/pagination"
)

// Handler handles HTTP requests for clients
type Handler struct {
	service *Service
}

// NewHandler creates a new client handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create registers a new client
// POST /api/v1/clients
func (h *Handler) Create(c *gin.Context) {
	var req CreateClientRequest
	if !common.BindJSON(c, &req) {
		return
	}

	cl, err := h.service.CreateClient(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create client") {
		return
	}

	common.CreatedResponse(c, cl)
}

// Get returns a client by ID
// GET /api/v1/clients/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "client ID")
	if !ok {
		return
	}

	cl, err := h.service.GetClient(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get client") {
		return
	}

	common.SuccessResponse(c, cl)
}

// List returns clients matching an optional search term
// GET /api/v1/clients?search=&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	params := pagination.ParseParams(c)
	search := c.Query("search")

	resp, total, err := h.service.ListClients(c.Request.Context(), search, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list clients") {
		return
	}

	common.SuccessResponseWithMeta(c, resp, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// Update updates client details
// PUT /api/v1/clients/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "client ID")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if !common.BindJSON(c, &req) {
		return
	}

	cl, err := h.service.UpdateClient(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update client") {
		return
	}

	common.SuccessResponse(c, cl)
}

// Deactivate soft-deletes a client
// DELETE /api/v1/clients/:id
func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "client ID")
	if !ok {
		return
	}

	err := h.service.DeactivateClient(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to deactivate client") {
		return
	}

	common.NoContentResponse(c)
}
