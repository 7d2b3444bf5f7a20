package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	expertService "github.com/nurturelink/consult-api/internal/service/expert"
)

// Handler serves the admin panel endpoints. The router guards the whole
// group with the admin role.
type Handler struct {
	expertSvc expertService.ExpertServicer
}

func NewHandler(expertSvc expertService.ExpertServicer) *Handler {
	return &Handler{expertSvc: expertSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/experts", h.ListExperts)
		admin.GET("/experts/stats", h.Stats)
		admin.POST("/experts/:id/approve", h.Approve)
		admin.POST("/experts/:id/reject", h.Reject)
	}
}

func (h *Handler) ListExperts(c *gin.Context) {
	status := c.DefaultQuery("status", string(model.ApprovalStatusPending))

	experts, err := h.expertSvc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "experts", experts)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.expertSvc.Stats(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "approval stats", stats)
}

func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, true)
}

func (h *Handler) Reject(c *gin.Context) {
	h.setStatus(c, false)
}

func (h *Handler) setStatus(c *gin.Context, approve bool) {
	adminID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	expertID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var expert *model.ExpertProfile
	if approve {
		expert, err = h.expertSvc.Approve(c.Request.Context(), expertID, adminID)
	} else {
		expert, err = h.expertSvc.Reject(c.Request.Context(), expertID, adminID)
	}
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "expert "+string(expert.ApprovalStatus), expert)
}
