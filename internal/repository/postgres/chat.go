package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type chatRepository struct {
	BaseRepository
}

func NewChatRepository(base BaseRepository) repository.ChatRepository {
	return &chatRepository{base}
}

// GetOrCreateConversation returns the conversation for a link, creating
// it on first use. Conversations are unique per link.
func (r *chatRepository) GetOrCreateConversation(ctx context.Context, linkID uuid.UUID) (*model.Conversation, error) {
	query := `
		INSERT INTO conversations (conversation_id, link_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (link_id) DO UPDATE SET link_id = EXCLUDED.link_id
		RETURNING conversation_id, link_id, created_at
	`

	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, query, uuid.New(), linkID, time.Now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("link")
		}
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return &conv, nil
}

const conversationDetailsSelect = `
	SELECT cv.conversation_id, cv.link_id, cv.created_at,
	       l.parent_user_id, l.expert_id, l.child_id,
	       c.child_name, e.full_name AS expert_name
	FROM conversations cv
	JOIN expert_child_links l ON l.link_id = cv.link_id
	JOIN children c ON c.child_id = l.child_id
	JOIN experts e ON e.expert_id = l.expert_id
`

func (r *chatRepository) GetConversation(ctx context.Context, conversationID uuid.UUID) (*model.ConversationDetails, error) {
	query := conversationDetailsSelect + ` WHERE cv.conversation_id = $1`

	var conv model.ConversationDetails
	if err := r.db.GetContext(ctx, &conv, query, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("conversation")
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *chatRepository) ListConversationsForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConversationDetails, error) {
	query := conversationDetailsSelect + `
		WHERE l.parent_user_id = $1
		ORDER BY cv.created_at DESC
	`

	convs := []*model.ConversationDetails{}
	if err := r.db.SelectContext(ctx, &convs, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (r *chatRepository) ListConversationsForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConversationDetails, error) {
	query := conversationDetailsSelect + `
		WHERE l.expert_id = $1
		ORDER BY cv.created_at DESC
	`

	convs := []*model.ConversationDetails{}
	if err := r.db.SelectContext(ctx, &convs, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// AppendMessage inserts a message row. Messages are never updated or
// deleted.
func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (
			message_id, conversation_id, sender_id, text, type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	msg.MessageID = uuid.New()
	msg.CreatedAt = time.Now()
	if msg.Type == "" {
		msg.Type = model.MessageTypeText
	}

	_, err := r.db.ExecContext(ctx, query,
		msg.MessageID,
		msg.ConversationID,
		msg.SenderID,
		msg.Text,
		msg.Type,
		msg.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("conversation")
		}
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*model.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	messages := []*model.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
