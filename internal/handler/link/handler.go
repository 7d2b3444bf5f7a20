package link

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	linkService "github.com/nurturelink/consult-api/internal/service/link"
)

type Handler struct {
	service linkService.LinkServicer
}

func NewHandler(service linkService.LinkServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	links := r.Group("/links")
	{
		links.POST("", h.Create)
		links.GET("/parent", h.ListForParent)
		links.GET("/expert", h.ListForExpert)
	}
}

func (h *Handler) Create(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	link, err := h.service.Create(c.Request.Context(), callerID, handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "link created", link)
}

func (h *Handler) ListForParent(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	links, err := h.service.ListForParent(c.Request.Context(), parentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "links", links)
}

func (h *Handler) ListForExpert(c *gin.Context) {
	expertID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	links, err := h.service.ListForExpert(c.Request.Context(), expertID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "links", links)
}
