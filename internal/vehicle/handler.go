package vehicle

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/common"
)

// Handler handles HTTP requests for vehicles
type Handler struct {
	service *Service
}

// NewHandler creates a new vehicle handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateVehicle handles POST /vehicles
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req CreateVehicleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	v, err := h.service.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to create vehicle")
		return
	}

	common.CreatedResponse(c, v)
}

// GetVehicle handles GET /vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	v, err := h.service.GetVehicle(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to get vehicle")
		return
	}

	common.SuccessResponse(c, v)
}

// GetAvailability handles GET /vehicles/:id/availability
func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	result, err := h.service.GetAvailability(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		common.HandleServiceError(c, err, "Failed to compute availability")
		return
	}

	common.SuccessResponse(c, result)
}

// ListVehicles handles GET /vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	typeFilter := c.Query("type")
	includeInactive := c.Query("include_inactive") == "true"

	resp, err := h.service.ListVehicles(c.Request.Context(), typeFilter, includeInactive, time.Now().UTC())
	if err != nil {
		common.HandleServiceError(c, err, "Failed to list vehicles")
		return
	}

	common.SuccessResponse(c, resp)
}

// UpdateVehicle handles PUT /vehicles/:id
func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	var req UpdateVehicleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	v, err := h.service.UpdateVehicle(c.Request.Context(), id, &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to update vehicle")
		return
	}

	common.SuccessResponse(c, v)
}

// RelocateVehicle handles PUT /vehicles/:id/location
func (h *Handler) RelocateVehicle(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	var req struct {
		LocationID *uuid.UUID `json:"location_id"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	if err := h.service.RelocateVehicle(c.Request.Context(), id, req.LocationID); err != nil {
		common.HandleServiceError(c, err, "Failed to relocate vehicle")
		return
	}

	common.NoContentResponse(c)
}

// DeactivateVehicle handles DELETE /vehicles/:id
func (h *Handler) DeactivateVehicle(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	if err := h.service.DeactivateVehicle(c.Request.Context(), id); err != nil {
		common.HandleServiceError(c, err, "Failed to deactivate vehicle")
		return
	}

	common.NoContentResponse(c)
}
