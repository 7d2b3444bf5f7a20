package speech

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	speechService "github.com/nurturelink/consult-api/internal/service/speech"
)

type Handler struct {
	service speechService.SpeechServicer
}

func NewHandler(service speechService.SpeechServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	speech := r.Group("/speech")
	{
		speech.POST("", h.Submit)
		speech.GET("/child/:id", h.ListForChild)
		speech.GET("/:id", h.Get)
		speech.GET("/:id/result", h.GetResult)
		speech.DELETE("/:id", h.Delete)
	}
}

// Submit accepts a multipart form with the audio under "file".
func (h *Handler) Submit(c *gin.Context) {
	parentID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateSpeechSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		handler.BadRequest(c, "audio file is required")
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), parentID, &req, file)
	if err != nil {
		handler.Error(c, err)
		return
	}

	message := "recording submitted"
	if resp.Warning != "" {
		message = resp.Warning
	}
	handler.Created(c, message, resp)
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
	handler.OK(c, "speech submissions", subs)
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
	handler.OK(c, "speech submission", sub)
}

func (h *Handler) GetResult(c *gin.Context) {
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

	result, err := h.service.GetResult(c.Request.Context(), parentID, submissionID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "speech result", result)
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
	handler.OK(c, "speech submission deleted", nil)
}
