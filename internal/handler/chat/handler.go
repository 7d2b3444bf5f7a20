package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	chatService "github.com/nurturelink/consult-api/internal/service/chat"
)

type Handler struct {
	service chatService.ChatServicer
}

func NewHandler(service chatService.ChatServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	{
		chat.POST("/conversations", h.OpenConversation)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/conversations/:id/messages", h.ListMessages)
		chat.POST("/conversations/:id/messages", h.SendMessage)
	}
}

func (h *Handler) OpenConversation(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	conv, err := h.service.OpenConversation(c.Request.Context(), callerID, handler.Role(c), req.LinkID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "conversation", conv)
}

func (h *Handler) ListConversations(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	convs, err := h.service.ListConversations(c.Request.Context(), callerID, handler.Role(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "conversations", convs)
}

func (h *Handler) ListMessages(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	conversationID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), callerID, handler.Role(c), conversationID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "messages", messages)
}

func (h *Handler) SendMessage(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	conversationID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), callerID, handler.Role(c), conversationID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "message sent", msg)
}
