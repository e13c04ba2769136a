package booking

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	"github.com/rsalgueiro/truck-booking/pkg/pagination"
	"github.com/rsalgueiro/truck-booking/pkg/validation"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.AppErrorResponse(c, common.NewUnauthorizedError("authentication required"))
		return
	}

	var req CreateBookingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to create booking")
		return
	}

	common.CreatedResponse(c, b)
}

// GetBooking handles GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to get booking")
		return
	}

	common.SuccessResponse(c, b)
}

// ListBookings handles GET /bookings
func (h *Handler) ListBookings(c *gin.Context) {
	params := pagination.ParseParams(c)

	filter := ListFilter{Limit: params.Limit, Offset: params.Offset}

	if raw := c.Query("vehicle_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.AppErrorResponse(c, common.NewBadRequestError("invalid vehicle_id", err))
			return
		}
		filter.VehicleID = &id
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.AppErrorResponse(c, common.NewBadRequestError("invalid client_id", err))
			return
		}
		filter.ClientID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			common.AppErrorResponse(c, common.NewBadRequestError("invalid status", err))
			return
		}
		filter.Status = &status
	}

	bookings, total, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to list bookings")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, BookingListResponse{Bookings: bookings}, meta)
}

// UpdateBooking handles PUT /bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to update booking")
		return
	}

	common.SuccessResponse(c, b)
}

// ApproveBooking handles POST /bookings/:id/approve
func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	b, err := h.service.ApproveBooking(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to approve booking")
		return
	}

	common.SuccessResponse(c, b)
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.AppErrorResponse(c, common.NewUnauthorizedError("authentication required"))
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.AppErrorResponse(c, common.NewUnauthorizedError("authentication required"))
		return
	}

	var req CancelBookingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, userID, role, req.Reason)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to cancel booking")
		return
	}

	common.SuccessResponse(c, b)
}

// RecordFinalKM handles POST /bookings/:id/final-km
func (h *Handler) RecordFinalKM(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	var req FinalKMRequest
	if !common.BindJSON(c, &req) {
		return
	}

	b, err := h.service.RecordFinalKM(c.Request.Context(), id, req.FinalKM)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to record final km")
		return
	}

	common.SuccessResponse(c, b)
}

// GetCalendar handles GET /bookings/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetCalendar(c *gin.Context) {
	from, err := validation.ParseDate(c.Query("from"))
	if err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid from date", err))
		return
	}
	to, err := validation.ParseDate(c.Query("to"))
	if err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("invalid to date", err))
		return
	}

	calendar, err := h.service.GetCalendar(c.Request.Context(), from, to)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to load calendar")
		return
	}

	common.SuccessResponse(c, calendar)
}

// GetAutomationSettings handles GET /settings/automation
func (h *Handler) GetAutomationSettings(c *gin.Context) {
	settings, err := h.service.GetAutomationSettings(c.Request.Context())
	if err != nil {
		common.HandleServiceError(c, err, "Failed to load automation settings")
		return
	}

	common.SuccessResponse(c, settings)
}

// UpdateAutomationSettings handles PUT /settings/automation
func (h *Handler) UpdateAutomationSettings(c *gin.Context) {
	var req UpdateAutomationSettingsRequest
	if !common.BindJSON(c, &req) {
		return
	}

	settings, err := h.service.UpdateAutomationSettings(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to update automation settings")
		return
	}

	common.SuccessResponse(c, settings)
}
