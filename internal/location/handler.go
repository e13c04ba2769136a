package location

import (
	"github.com/gin-gonic/gin"
	"github.com/rsalgueiro/truck-booking/pkg/common"
)

// Handler handles HTTP requests for locations
type Handler struct {
	service *Service
}

// NewHandler creates a new location handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create creates a new location
// POST /api/v1/locations
func (h *Handler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if !common.BindJSON(c, &req) {
		return
	}

	loc, err := h.service.CreateLocation(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create location") {
		return
	}

	common.CreatedResponse(c, loc)
}

// Get returns a location by ID
// GET /api/v1/locations/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "location ID")
	if !ok {
		return
	}

	loc, err := h.service.GetLocation(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get location") {
		return
	}

	common.SuccessResponse(c, loc)
}

// List returns all locations
// GET /api/v1/locations
func (h *Handler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	resp, err := h.service.ListLocations(c.Request.Context(), includeInactive)
	if common.HandleServiceError(c, err, "failed to list locations") {
		return
	}

	common.SuccessResponse(c, resp)
}

// Update updates a location
// PUT /api/v1/locations/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "location ID")
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if !common.BindJSON(c, &req) {
		return
	}

	loc, err := h.service.UpdateLocation(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update location") {
		return
	}

	common.SuccessResponse(c, loc)
}

// Deactivate soft-deletes a location
// DELETE /api/v1/locations/:id
func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "location ID")
	if !ok {
		return
	}

	err := h.service.DeactivateLocation(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to deactivate location") {
		return
	}

	common.NoContentResponse(c)
}
