package documents

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rsalgueiro/truck-booking/pkg/common"
)

// Handler handles document upload requests
type Handler struct {
	service *Service
}

// NewHandler creates a new documents handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadContract attaches a signed contract to a booking
// POST /api/v1/bookings/:id/contract (multipart, field "file")
func (h *Handler) UploadContract(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, 400, "missing file upload")
		return
	}

	src, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, 400, "unreadable file upload")
		return
	}
	defer src.Close()

	b, err := h.service.UploadContract(c.Request.Context(), id, header.Filename, src, header.Size)
	if common.HandleServiceError(c, err, "failed to upload contract") {
		return
	}

	common.SuccessResponse(c, b)
}

// UploadVehicleDocument stores a vehicle picture, insurance or registration document
// POST /api/v1/vehicles/:id/documents/:kind (multipart, field "file")
func (h *Handler) UploadVehicleDocument(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}
	kind := c.Param("kind")

	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, 400, "missing file upload")
		return
	}

	src, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, 400, "unreadable file upload")
		return
	}
	defer src.Close()

	path, err := h.service.UploadVehicleDocument(c.Request.Context(), id, kind, header.Filename, src, header.Size)
	if common.HandleServiceError(c, err, "failed to upload document") {
		return
	}

	common.SuccessResponse(c, gin.H{"path": path})
}

// Download streams a stored contract or vehicle document
// GET /api/v1/media/*path
func (h *Handler) Download(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	if rel == "" {
		common.ErrorResponse(c, 400, "missing document path")
		return
	}

	f, err := h.service.Open(rel)
	if common.HandleServiceError(c, err, "failed to open document") {
		return
	}
	defer f.Close()

	c.FileAttachment(f.Name(), filepath.Base(rel))
}
