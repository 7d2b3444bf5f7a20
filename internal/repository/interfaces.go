package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurturelink/consult-api/internal/model"
)

// UserRepository manages account rows and the per-role profile tables.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)

	CreateParentProfile(ctx context.Context, profile *model.ParentProfile) error
	GetParentProfile(ctx context.Context, userID uuid.UUID) (*model.ParentProfile, error)
	UpdateParentProfile(ctx context.Context, profile *model.ParentProfile) error

	CreateAdminProfile(ctx context.Context, profile *model.AdminProfile) error
	GetAdminProfile(ctx context.Context, adminID uuid.UUID) (*model.AdminProfile, error)
}

// TokenRepository stores refresh tokens so logout can revoke them.
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
	ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

type ChildRepository interface {
	Create(ctx context.Context, child *model.Child) error
	GetByID(ctx context.Context, childID uuid.UUID) (*model.Child, error)
	ListByParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.Child, error)
	Update(ctx context.Context, child *model.Child) error
	Delete(ctx context.Context, childID, parentUserID uuid.UUID) error
}

type ExpertRepository interface {
	Create(ctx context.Context, expert *model.ExpertProfile) error
	GetByID(ctx context.Context, expertID uuid.UUID) (*model.ExpertProfile, error)
	ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]*model.ExpertProfile, error)
	UpdateStatus(ctx context.Context, expertID, adminID uuid.UUID, status model.ApprovalStatus) error
	Update(ctx context.Context, expert *model.ExpertProfile) error
	Stats(ctx context.Context) (*model.ApprovalStats, error)
}

type ConsultationRepository interface {
	Create(ctx context.Context, req *model.ConsultationRequest) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*model.ConsultationRequest, error)
	ExistsActive(ctx context.Context, parentUserID, expertID, childID uuid.UUID) (bool, error)
	ExistsApproved(ctx context.Context, parentUserID, expertID, childID uuid.UUID) (bool, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConsultationRequest, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConsultationRequest, error)
	UpdateStatus(ctx context.Context, requestID uuid.UUID, status model.RequestStatus) error
}

// LinkRepository manages expert-child links. Upsert is idempotent on
// (expert_id, child_id) so approval retries and the outbox processor
// can safely replay it.
type LinkRepository interface {
	Upsert(ctx context.Context, link *model.ExpertChildLink) (*model.ExpertChildLink, error)
	GetByID(ctx context.Context, linkID uuid.UUID) (*model.ExpertChildLink, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.LinkDetails, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.LinkDetails, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, appointmentID uuid.UUID) (*model.Appointment, error)
	GetDetails(ctx context.Context, appointmentID uuid.UUID) (*model.AppointmentDetails, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.AppointmentDetails, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.AppointmentDetails, error)
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus) error

	UpsertRecord(ctx context.Context, appointmentID uuid.UUID, patch *model.RecordPatch) (*model.AppointmentRecord, error)
	UpsertFeedback(ctx context.Context, appointmentID uuid.UUID, feedback string) (*model.AppointmentRecord, error)
	GetRecord(ctx context.Context, appointmentID uuid.UUID) (*model.AppointmentRecord, error)
	ListFeedbackForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.FeedbackEntry, error)
}

type ChatRepository interface {
	GetOrCreateConversation(ctx context.Context, linkID uuid.UUID) (*model.Conversation, error)
	GetConversation(ctx context.Context, conversationID uuid.UUID) (*model.ConversationDetails, error)
	ListConversationsForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConversationDetails, error)
	ListConversationsForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConversationDetails, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*model.Message, error)
}

type SpeechRepository interface {
	CreateSubmission(ctx context.Context, sub *model.SpeechSubmission) error
	GetSubmission(ctx context.Context, submissionID uuid.UUID) (*model.SpeechSubmission, error)
	ListForChild(ctx context.Context, childID uuid.UUID) ([]*model.SpeechSubmission, error)
	DeleteSubmission(ctx context.Context, submissionID uuid.UUID) error
	CreateResult(ctx context.Context, result *model.SpeechResult) error
	GetResult(ctx context.Context, submissionID uuid.UUID) (*model.SpeechResult, error)
}

type QuestionnaireRepository interface {
	Create(ctx context.Context, sub *model.QuestionnaireSubmission) error
	GetByID(ctx context.Context, submissionID uuid.UUID) (*model.QuestionnaireSubmission, error)
	ListForChild(ctx context.Context, childID uuid.UUID) ([]*model.QuestionnaireSubmission, error)
	Delete(ctx context.Context, submissionID uuid.UUID) error
}

// OutboxRepository persists compensating side effects for the worker.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
