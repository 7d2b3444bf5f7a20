package consultation

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	consultationService "github.com/nurturelink/consult-api/internal/service/consultation"
)

type Handler struct {
	service consultationService.ConsultationServicer
}

func NewHandler(service consultationService.ConsultationServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.POST("/request", h.Request)
		consultations.POST("/respond", h.Respond)
		consultations.GET("/parent", h.ListForParent)
		consultations.GET("/expert", h.ListForExpert)
	}
}

func (h *Handler) Request(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	request, err := h.service.Request(c.Request.Context(), parentID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "consultation requested", request)
}

func (h *Handler) Respond(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.RespondConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Respond(c.Request.Context(), callerID, handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	message := "request " + string(resp.Request.Status)
	if resp.Warning != "" {
		message = resp.Warning
	}
	handler.OK(c, message, resp)
}

func (h *Handler) ListForParent(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	requests, err := h.service.ListForParent(c.Request.Context(), parentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "consultation requests", requests)
}

func (h *Handler) ListForExpert(c *gin.Context) {
	expertID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	requests, err := h.service.ListForExpert(c.Request.Context(), expertID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "consultation requests", requests)
}
