package appointment

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/meeting"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type AppointmentServicer interface {
	Create(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.AppointmentDetails, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.AppointmentDetails, error)
	Details(ctx context.Context, callerID uuid.UUID, callerRole string, appointmentID uuid.UUID) (*model.AppointmentDetails, *model.AppointmentRecord, error)
	SaveNotes(ctx context.Context, expertID uuid.UUID, appointmentID uuid.UUID, patch *model.RecordPatch) (*model.AppointmentRecord, error)
	SaveFeedback(ctx context.Context, expertID uuid.UUID, appointmentID uuid.UUID, feedback string) (*model.AppointmentRecord, error)
	ListFeedbackForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.FeedbackEntry, error)
	CreateMeetingLink(ctx context.Context, callerRole string, req *model.MeetingLinkRequest) (*meeting.Meeting, error)
}

type Service struct {
	repo       repository.AppointmentRepository
	linkRepo   repository.LinkRepository
	meetingSvc meeting.Service
	logger     zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, linkRepo repository.LinkRepository, meetingSvc meeting.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		linkRepo:   linkRepo,
		meetingSvc: meetingSvc,
		logger:     logger,
	}
}

// Create schedules an appointment on an existing expert-child link.
// Only the link's expert (or an admin) may schedule. Experts pass
// link_id directly; a child_id is resolved to the caller's link with
// that child.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if callerRole != model.RoleExpert && callerRole != model.RoleAdmin {
		return nil, apperrors.Forbidden()
	}

	apptType, ok := model.NormalizeAppointmentType(req.AppointmentType)
	if !ok {
		return nil, apperrors.Validation("unknown appointment type")
	}

	link, err := s.resolveLink(ctx, callerID, req)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && link.ExpertID != callerID {
		return nil, apperrors.Forbidden()
	}

	switch apptType {
	case model.AppointmentTypeCall:
		if req.Contact == nil || *req.Contact == "" {
			return nil, apperrors.Validation("contact is required for call appointments")
		}
	case model.AppointmentTypePhysical:
		if req.Location == nil || *req.Location == "" {
			return nil, apperrors.Validation("location is required for physical appointments")
		}
	}

	appt := &model.Appointment{
		LinkID:          link.LinkID,
		AppointmentType: apptType,
		ScheduledAt:     req.ScheduledAt,
		MeetLink:        req.MeetLink,
		Contact:         req.Contact,
		Location:        req.Location,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) resolveLink(ctx context.Context, callerID uuid.UUID, req *model.CreateAppointmentRequest) (*model.ExpertChildLink, error) {
	if req.LinkID != nil {
		return s.linkRepo.GetByID(ctx, *req.LinkID)
	}
	if req.ChildID == nil {
		return nil, apperrors.Validation("link_id or child_id is required")
	}

	links, err := s.linkRepo.ListForExpert(ctx, callerID)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if l.ChildID == *req.ChildID {
			return &l.ExpertChildLink, nil
		}
	}
	return nil, apperrors.NotFound("link")
}

func (s *Service) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.AppointmentDetails, error) {
	return s.repo.ListForParent(ctx, parentUserID)
}

func (s *Service) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.AppointmentDetails, error) {
	return s.repo.ListForExpert(ctx, expertID)
}

// Details returns the appointment with its record slot, if any. Only
// the participants (and admins) may view it.
func (s *Service) Details(ctx context.Context, callerID uuid.UUID, callerRole string, appointmentID uuid.UUID) (*model.AppointmentDetails, *model.AppointmentRecord, error) {
	details, err := s.repo.GetDetails(ctx, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	if callerRole != model.RoleAdmin && details.ExpertID != callerID && details.ParentUserID != callerID {
		return nil, nil, apperrors.NotFound("appointment")
	}

	record, err := s.repo.GetRecord(ctx, appointmentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return details, nil, nil
		}
		return nil, nil, err
	}
	return details, record, nil
}

// SaveNotes writes the expert's clinical notes into the appointment's
// record slot. Only the expert on the appointment's link may write.
func (s *Service) SaveNotes(ctx context.Context, expertID uuid.UUID, appointmentID uuid.UUID, patch *model.RecordPatch) (*model.AppointmentRecord, error) {
	if patch.Empty() {
		return nil, apperrors.Validation("at least one field is required")
	}
	if err := s.authorizeExpert(ctx, expertID, appointmentID); err != nil {
		return nil, err
	}
	return s.repo.UpsertRecord(ctx, appointmentID, patch)
}

func (s *Service) SaveFeedback(ctx context.Context, expertID uuid.UUID, appointmentID uuid.UUID, feedback string) (*model.AppointmentRecord, error) {
	if err := s.authorizeExpert(ctx, expertID, appointmentID); err != nil {
		return nil, err
	}
	return s.repo.UpsertFeedback(ctx, appointmentID, feedback)
}

func (s *Service) authorizeExpert(ctx context.Context, expertID uuid.UUID, appointmentID uuid.UUID) error {
	details, err := s.repo.GetDetails(ctx, appointmentID)
	if err != nil {
		return err
	}
	if details.ExpertID != expertID {
		return apperrors.Forbidden()
	}
	return nil
}

func (s *Service) ListFeedbackForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.FeedbackEntry, error) {
	return s.repo.ListFeedbackForParent(ctx, parentUserID)
}

// CreateMeetingLink provisions a video meeting for an appointment via
// the meeting provider. Experts only.
func (s *Service) CreateMeetingLink(ctx context.Context, callerRole string, req *model.MeetingLinkRequest) (*meeting.Meeting, error) {
	if callerRole != model.RoleExpert {
		return nil, apperrors.Forbidden()
	}

	duration := req.Duration
	if duration <= 0 {
		duration = 30
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	m, err := s.meetingSvc.CreateMeeting(ctx, &meeting.CreateMeetingRequest{
		Topic:     req.Topic,
		StartTime: req.StartTime,
		Duration:  duration,
		Timezone:  timezone,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("meeting provider call failed")
		return nil, apperrors.Upstream("failed to create meeting link", err)
	}
	return m, nil
}
