package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Handler handles HTTP requests for authentication and user management
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !common.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "Login failed")
		return
	}

	common.SuccessResponse(c, resp)
}

// GetProfile handles GET /auth/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.AppErrorResponse(c, common.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to load profile")
		return
	}

	common.SuccessResponse(c, user)
}

// ChangePassword handles POST /auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.AppErrorResponse(c, common.NewUnauthorizedError("authentication required"))
		return
	}

	var req ChangePasswordRequest
	if !common.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		common.HandleServiceError(c, err, "Failed to change password")
		return
	}

	common.NoContentResponse(c)
}

// CreateUser handles POST /users (admin)
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to create user")
		return
	}

	common.CreatedResponse(c, user)
}

// GetUser handles GET /users/:id (admin)
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to get user")
		return
	}

	common.SuccessResponse(c, user)
}

// ListUsers handles GET /users (admin)
func (h *Handler) ListUsers(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	users, err := h.service.ListUsers(c.Request.Context(), includeInactive)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to list users")
		return
	}

	common.SuccessResponse(c, gin.H{"users": users, "count": len(users)})
}

// UpdateUser handles PUT /users/:id (admin)
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to update user")
		return
	}

	common.SuccessResponse(c, user)
}

// ResetPassword handles POST /users/:id/reset-password (admin)
func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), id); err != nil {
		common.HandleServiceError(c, err, "Failed to reset password")
		return
	}

	common.NoContentResponse(c)
}

// DeactivateUser handles DELETE /users/:id (admin)
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), id); err != nil {
		common.HandleServiceError(c, err, "Failed to deactivate user")
		return
	}

	common.NoContentResponse(c)
}

// ImportUsers handles POST /users/import (admin, multipart CSV)
func (h *Handler) ImportUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		common.AppErrorResponse(c, common.NewBadRequestError("missing CSV file upload", err))
		return
	}
	defer file.Close()

	report, err := h.service.ImportUsers(c.Request.Context(), file)
	if err != nil {
		common.HandleServiceError(c, err, "Failed to import users")
		return
	}

	common.SuccessResponse(c, report)
}
