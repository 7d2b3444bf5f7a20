package upload

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	uploadService "github.com/nurturelink/consult-api/internal/service/upload"
)

type Handler struct {
	service uploadService.UploadServicer
}

func NewHandler(service uploadService.UploadServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	storage := r.Group("/storage")
	{
		storage.POST("/images", h.UploadImage)
		storage.POST("/documents", h.UploadDocument)
		storage.DELETE("", h.Delete)
	}
}

func (h *Handler) UploadImage(c *gin.Context) {
	h.store(c, uploadService.FolderImages)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	h.store(c, uploadService.FolderDocuments)
}

func (h *Handler) store(c *gin.Context, folder string) {
	file, err := c.FormFile("file")
	if err != nil {
		handler.BadRequest(c, "file is required")
		return
	}

	up, err := h.service.Store(c.Request.Context(), folder, file)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "file uploaded", up)
}

func (h *Handler) Delete(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Remove(c.Request.Context(), req.Key); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "file deleted", nil)
}
