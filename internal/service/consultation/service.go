package consultation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

const linkWarning = "request approved, but the expert-child link could not be created yet; it will be retried automatically"

type ConsultationServicer interface {
	Request(ctx context.Context, parentUserID uuid.UUID, req *model.CreateConsultationRequest) (*model.ConsultationRequest, error)
	Respond(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.RespondConsultationRequest) (*model.ConsultationResponse, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConsultationRequest, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConsultationRequest, error)
}

type Service struct {
	repo       repository.ConsultationRepository
	childRepo  repository.ChildRepository
	expertRepo repository.ExpertRepository
	linkRepo   repository.LinkRepository
	outboxRepo repository.OutboxRepository
	logger     zerolog.Logger
}

func NewService(
	repo repository.ConsultationRepository,
	childRepo repository.ChildRepository,
	expertRepo repository.ExpertRepository,
	linkRepo repository.LinkRepository,
	outboxRepo repository.OutboxRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		childRepo:  childRepo,
		expertRepo: expertRepo,
		linkRepo:   linkRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Request creates a pending consultation request. The child must belong
// to the caller and the expert must be approved.
func (s *Service) Request(ctx context.Context, parentUserID uuid.UUID, req *model.CreateConsultationRequest) (*model.ConsultationRequest, error) {
	child, err := s.childRepo.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}

	expert, err := s.expertRepo.GetByID(ctx, req.ExpertID)
	if err != nil {
		return nil, err
	}
	if expert.ApprovalStatus != model.ApprovalStatusApproved {
		return nil, apperrors.Validation("expert is not accepting requests")
	}

	exists, err := s.repo.ExistsActive(ctx, parentUserID, req.ExpertID, req.ChildID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("an active request already exists for this expert and child")
	}

	request := &model.ConsultationRequest{
		ParentUserID: parentUserID,
		ExpertID:     req.ExpertID,
		ChildID:      req.ChildID,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Respond lets the addressed expert (or an admin) approve or reject a
// pending request. Approval upserts the expert-child link; if the link
// write fails the approval stands and the link is queued for the outbox
// worker, reported to the caller as a warning.
func (s *Service) Respond(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.RespondConsultationRequest) (*model.ConsultationResponse, error) {
	status := model.RequestStatus(req.Status)
	if status != model.RequestStatusApproved && status != model.RequestStatusRejected {
		return nil, apperrors.Validation("status must be approved or rejected")
	}

	request, err := s.repo.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && request.ExpertID != callerID {
		return nil, apperrors.Forbidden()
	}
	if request.Status != model.RequestStatusPending {
		return nil, apperrors.Validation("request already " + string(request.Status))
	}

	if err := s.repo.UpdateStatus(ctx, request.RequestID, status); err != nil {
		return nil, err
	}
	request.Status = status

	resp := &model.ConsultationResponse{Request: request}
	if status != model.RequestStatusApproved {
		return resp, nil
	}

	link, err := s.linkRepo.Upsert(ctx, &model.ExpertChildLink{
		ExpertID:     request.ExpertID,
		ChildID:      request.ChildID,
		ParentUserID: request.ParentUserID,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("request_id", request.RequestID.String()).
			Msg("link creation failed after approval, queueing for retry")
		if qErr := s.queueLinkUpsert(ctx, request); qErr != nil {
			s.logger.Error().Err(qErr).
				Str("request_id", request.RequestID.String()).
				Msg("failed to queue link upsert")
		}
		resp.Warning = linkWarning
		return resp, nil
	}

	resp.Link = link
	return resp, nil
}

func (s *Service) queueLinkUpsert(ctx context.Context, request *model.ConsultationRequest) error {
	payload, err := json.Marshal(model.LinkUpsertPayload{
		ExpertID:     request.ExpertID,
		ChildID:      request.ChildID,
		ParentUserID: request.ParentUserID,
	})
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventTypeLinkUpsert,
		Payload:   payload,
	})
}

func (s *Service) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConsultationRequest, error) {
	return s.repo.ListForParent(ctx, parentUserID)
}

func (s *Service) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConsultationRequest, error) {
	return s.repo.ListForExpert(ctx, expertID)
}
