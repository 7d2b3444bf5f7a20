package chat

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/messaging"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

const defaultMessageLimit = 200

type ChatServicer interface {
	OpenConversation(ctx context.Context, callerID uuid.UUID, callerRole string, linkID uuid.UUID) (*model.Conversation, error)
	ListConversations(ctx context.Context, callerID uuid.UUID, callerRole string) ([]*model.ConversationDetails, error)
	SendMessage(ctx context.Context, callerID uuid.UUID, callerRole string, conversationID uuid.UUID, req *model.SendMessageRequest) (*model.Message, error)
	ListMessages(ctx context.Context, callerID uuid.UUID, callerRole string, conversationID uuid.UUID) ([]*model.Message, error)
}

type Service struct {
	repo     repository.ChatRepository
	linkRepo repository.LinkRepository
	broker   messaging.Broker
	logger   zerolog.Logger
}

func NewService(repo repository.ChatRepository, linkRepo repository.LinkRepository, broker messaging.Broker, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		linkRepo: linkRepo,
		broker:   broker,
		logger:   logger,
	}
}

// OpenConversation returns the conversation for a link, creating it on
// first use. Only the link's parent or expert may open it.
func (s *Service) OpenConversation(ctx context.Context, callerID uuid.UUID, callerRole string, linkID uuid.UUID) (*model.Conversation, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && link.ParentUserID != callerID && link.ExpertID != callerID {
		return nil, apperrors.NotFound("link")
	}
	return s.repo.GetOrCreateConversation(ctx, linkID)
}

func (s *Service) ListConversations(ctx context.Context, callerID uuid.UUID, callerRole string) ([]*model.ConversationDetails, error) {
	switch callerRole {
	case model.RoleParent:
		return s.repo.ListConversationsForParent(ctx, callerID)
	case model.RoleExpert:
		return s.repo.ListConversationsForExpert(ctx, callerID)
	}
	return nil, apperrors.Forbidden()
}

// SendMessage appends a message and publishes a best-effort
// notification. A broker failure never fails the send.
func (s *Service) SendMessage(ctx context.Context, callerID uuid.UUID, callerRole string, conversationID uuid.UUID, req *model.SendMessageRequest) (*model.Message, error) {
	conv, err := s.authorize(ctx, callerID, callerRole, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conversationID,
		SenderID:       callerID,
		Text:           req.Text,
		Type:           model.MessageType(req.Type),
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, conv, msg)
	return msg, nil
}

func (s *Service) publish(ctx context.Context, conv *model.ConversationDetails, msg *model.Message) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.broker.Publish(ctx, "chat:"+conv.ConversationID.String(), &messaging.Message{
		Type:    model.EventTypeChatMessage,
		Payload: payload,
	}); err != nil {
		s.logger.Warn().Err(err).
			Str("conversation_id", conv.ConversationID.String()).
			Msg("failed to publish chat message")
	}
}

func (s *Service) ListMessages(ctx context.Context, callerID uuid.UUID, callerRole string, conversationID uuid.UUID) ([]*model.Message, error) {
	if _, err := s.authorize(ctx, callerID, callerRole, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID, defaultMessageLimit)
}

func (s *Service) authorize(ctx context.Context, callerID uuid.UUID, callerRole string, conversationID uuid.UUID) (*model.ConversationDetails, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && conv.ParentUserID != callerID && conv.ExpertID != callerID {
		return nil, apperrors.NotFound("conversation")
	}
	return conv, nil
}
