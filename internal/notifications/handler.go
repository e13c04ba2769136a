package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/pagination"
)

// Handler handles HTTP requests for notification administration
type Handler struct {
	service *Service
}

// NewHandler creates a new notifications handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateTemplate registers a new email template
// POST /api/v1/notifications/templates
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if !common.BindJSON(c, &req) {
		return
	}

	t, err := h.service.CreateTemplate(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create template") {
		return
	}

	common.CreatedResponse(c, t)
}

// GetTemplate returns a template by ID
// GET /api/v1/notifications/templates/:id
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "template ID")
	if !ok {
		return
	}

	t, err := h.service.GetTemplate(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get template") {
		return
	}

	common.SuccessResponse(c, t)
}

// ListTemplates returns all templates
// GET /api/v1/notifications/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list templates") {
		return
	}

	common.SuccessResponse(c, templates)
}

// UpdateTemplate updates a template
// PUT /api/v1/notifications/templates/:id
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "template ID")
	if !ok {
		return
	}

	var req UpdateTemplateRequest
	if !common.BindJSON(c, &req) {
		return
	}

	t, err := h.service.UpdateTemplate(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update template") {
		return
	}

	common.SuccessResponse(c, t)
}

// DeleteTemplate removes a template
// DELETE /api/v1/notifications/templates/:id
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "template ID")
	if !ok {
		return
	}

	err := h.service.DeleteTemplate(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to delete template") {
		return
	}

	common.NoContentResponse(c)
}

// CreateDistributionList registers a new distribution list
// POST /api/v1/notifications/distribution-lists
func (h *Handler) CreateDistributionList(c *gin.Context) {
	var req CreateDistributionListRequest
	if !common.BindJSON(c, &req) {
		return
	}

	dl, err := h.service.CreateDistributionList(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create distribution list") {
		return
	}

	common.CreatedResponse(c, dl)
}

// GetDistributionList returns a distribution list by ID
// GET /api/v1/notifications/distribution-lists/:id
func (h *Handler) GetDistributionList(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "distribution list ID")
	if !ok {
		return
	}

	dl, err := h.service.GetDistributionList(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get distribution list") {
		return
	}

	common.SuccessResponse(c, dl)
}

// ListDistributionLists returns all distribution lists
// GET /api/v1/notifications/distribution-lists
func (h *Handler) ListDistributionLists(c *gin.Context) {
	lists, err := h.service.ListDistributionLists(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list distribution lists") {
		return
	}

	common.SuccessResponse(c, lists)
}

// UpdateDistributionList updates a distribution list
// PUT /api/v1/notifications/distribution-lists/:id
func (h *Handler) UpdateDistributionList(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "distribution list ID")
	if !ok {
		return
	}

	var req UpdateDistributionListRequest
	if !common.BindJSON(c, &req) {
		return
	}

	dl, err := h.service.UpdateDistributionList(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update distribution list") {
		return
	}

	common.SuccessResponse(c, dl)
}

// DeleteDistributionList removes a distribution list
// DELETE /api/v1/notifications/distribution-lists/:id
func (h *Handler) DeleteDistributionList(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "distribution list ID")
	if !ok {
		return
	}

	err := h.service.DeleteDistributionList(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to delete distribution list") {
		return
	}

	common.NoContentResponse(c)
}

// ListEmailLogs returns delivery records
// GET /api/v1/notifications/logs?event=&limit=&offset=
func (h *Handler) ListEmailLogs(c *gin.Context) {
	params := pagination.ParseParams(c)
	event := c.Query("event")

	logs, total, err := h.service.ListEmailLogs(c.Request.Context(), event, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list email logs") {
		return
	}

	common.SuccessResponseWithMeta(c, logs, pagination.BuildMeta(params.Limit, params.Offset, total))
}
