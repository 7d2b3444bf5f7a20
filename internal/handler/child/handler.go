package child

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	childService "github.com/nurturelink/consult-api/internal/service/child"
)

type Handler struct {
	service childService.ChildServicer
}

func NewHandler(service childService.ChildServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	children := r.Group("/children")
	{
		children.POST("", h.Create)
		children.GET("", h.List)
		children.GET("/:id", h.Get)
		children.PUT("/:id", h.Update)
		children.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	child, err := h.service.Create(c.Request.Context(), parentID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "child added", child)
}

func (h *Handler) List(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	children, err := h.service.List(c.Request.Context(), parentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "children", children)
}

func (h *Handler) Get(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	childID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	child, err := h.service.Get(c.Request.Context(), parentID, childID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "child", child)
}

func (h *Handler) Update(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	childID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	child, err := h.service.Update(c.Request.Context(), parentID, childID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "child updated", child)
}

func (h *Handler) Delete(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	childID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), parentID, childID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "child deleted", nil)
}
