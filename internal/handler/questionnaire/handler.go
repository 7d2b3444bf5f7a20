package questionnaire

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	questionnaireService "github.com/nurturelink/consult-api/internal/service/questionnaire"
)

type Handler struct {
	service questionnaireService.QuestionnaireServicer
}

func NewHandler(service questionnaireService.QuestionnaireServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	questionnaires := r.Group("/questionnaires")
	{
		questionnaires.POST("", h.Submit)
		questionnaires.GET("/child/:id", h.ListForChild)
		questionnaires.GET("/:id", h.Get)
		questionnaires.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), parentID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "questionnaire submitted", sub)
}

func (h *Handler) Get(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	submissionID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	sub, err := h.service.Get(c.Request.Context(), parentID, submissionID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "questionnaire submission", sub)
}

func (h *Handler) Delete(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	submissionID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), parentID, submissionID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "questionnaire submission deleted", nil)
}

func (h *Handler) ListForChild(c *gin.Context) {
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

	subs, err := h.service.ListForChild(c.Request.Context(), parentID, childID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "questionnaire submissions", subs)
}
