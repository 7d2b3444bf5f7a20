package expert

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	expertService "github.com/nurturelink/consult-api/internal/service/expert"
)

type Handler struct {
	service expertService.ExpertServicer
}

func NewHandler(service expertService.ExpertServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public expert directory.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	experts := r.Group("/experts")
	{
		experts.GET("", h.List)
		experts.GET("/:id", h.Get)
	}
}

func (h *Handler) List(c *gin.Context) {
	experts, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "experts", experts)
}

func (h *Handler) Get(c *gin.Context) {
	expertID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	expert, err := h.service.Get(c.Request.Context(), expertID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "expert", expert)
}
