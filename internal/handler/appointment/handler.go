package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	appointmentService "github.com/nurturelink/consult-api/internal/service/appointment"
)

type Handler struct {
	service appointmentService.AppointmentServicer
}

func NewHandler(service appointmentService.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.POST("/meeting-link", h.CreateMeetingLink)
		appointments.GET("/parent", h.ListForParent)
		appointments.GET("/expert", h.ListForExpert)
		appointments.GET("/:id/details", h.Details)
		appointments.PUT("/:id/notes", h.SaveNotes)
		appointments.PUT("/:id/feedback", h.SaveFeedback)
	}

	r.GET("/feedback/parent", h.ListFeedback)
}

func (h *Handler) Create(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	appt, err := h.service.Create(c.Request.Context(), callerID, handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "appointment scheduled", appt)
}

func (h *Handler) CreateMeetingLink(c *gin.Context) {
	var req model.MeetingLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	meeting, err := h.service.CreateMeetingLink(c.Request.Context(), handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "meeting link created", meeting)
}

func (h *Handler) ListForParent(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	appts, err := h.service.ListForParent(c.Request.Context(), parentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "appointments", appts)
}

func (h *Handler) ListForExpert(c *gin.Context) {
	expertID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	appts, err := h.service.ListForExpert(c.Request.Context(), expertID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "appointments", appts)
}

func (h *Handler) Details(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	appointmentID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	details, record, err := h.service.Details(c.Request.Context(), callerID, handler.Role(c), appointmentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "appointment details", gin.H{
		"appointment": details,
		"record":      record,
	})
}

func (h *Handler) SaveNotes(c *gin.Context) {
	expertID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	appointmentID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var patch model.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	record, err := h.service.SaveNotes(c.Request.Context(), expertID, appointmentID, &patch)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "notes saved", record)
}

func (h *Handler) SaveFeedback(c *gin.Context) {
	expertID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	appointmentID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	record, err := h.service.SaveFeedback(c.Request.Context(), expertID, appointmentID, req.ProgressFeedback)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "feedback saved", record)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	entries, err := h.service.ListFeedbackForParent(c.Request.Context(), parentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "feedback", entries)
}
