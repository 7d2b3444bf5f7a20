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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			appointment_id, link_id, appointment_type, scheduled_at, status,
			meet_link, contact, location, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	appt.AppointmentID = uuid.New()
	appt.Status = model.AppointmentStatusScheduled
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appt.AppointmentID,
		appt.LinkID,
		appt.AppointmentType,
		appt.ScheduledAt,
		appt.Status,
		appt.MeetLink,
		appt.Contact,
		appt.Location,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("link")
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, appointmentID uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE appointment_id = $1`

	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

const appointmentDetailsSelect = `
	SELECT a.appointment_id, a.link_id, a.appointment_type, a.scheduled_at,
	       a.status, a.meet_link, a.contact, a.location, a.created_at, a.updated_at,
	       l.parent_user_id, l.expert_id, l.child_id,
	       c.child_name, e.full_name AS expert_name, e.specialization
	FROM appointments a
	JOIN expert_child_links l ON l.link_id = a.link_id
	JOIN children c ON c.child_id = l.child_id
	JOIN experts e ON e.expert_id = l.expert_id
`

func (r *appointmentRepository) GetDetails(ctx context.Context, appointmentID uuid.UUID) (*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + ` WHERE a.appointment_id = $1`

	var details model.AppointmentDetails
	if err := r.db.GetContext(ctx, &details, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to get appointment details: %w", err)
	}
	return &details, nil
}

func (r *appointmentRepository) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + `
		WHERE l.parent_user_id = $1
		ORDER BY a.scheduled_at DESC
	`

	appts := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &appts, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + `
		WHERE l.expert_id = $1
		ORDER BY a.scheduled_at DESC
	`

	appts := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &appts, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE appointment_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return checkAffected(result, "appointment")
}

// UpsertRecord writes the single record slot for an appointment. The
// COALESCE keeps columns the caller did not provide, so concurrent
// partial updates never blank each other out.
func (r *appointmentRepository) UpsertRecord(ctx context.Context, appointmentID uuid.UUID, patch *model.RecordPatch) (*model.AppointmentRecord, error) {
	query := `
		INSERT INTO appointment_records (
			record_id, appointment_id, therapy_plan, notes, medication,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (appointment_id) DO UPDATE
		SET therapy_plan = COALESCE(EXCLUDED.therapy_plan, appointment_records.therapy_plan),
		    notes        = COALESCE(EXCLUDED.notes, appointment_records.notes),
		    medication   = COALESCE(EXCLUDED.medication, appointment_records.medication),
		    updated_at   = NOW()
		RETURNING *
	`

	var record model.AppointmentRecord
	err := r.db.GetContext(ctx, &record, query,
		uuid.New(),
		appointmentID,
		patch.TherapyPlan,
		patch.Notes,
		patch.Medication,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to upsert appointment record: %w", err)
	}
	return &record, nil
}

func (r *appointmentRepository) UpsertFeedback(ctx context.Context, appointmentID uuid.UUID, feedback string) (*model.AppointmentRecord, error) {
	query := `
		INSERT INTO appointment_records (
			record_id, appointment_id, progress_feedback, created_at, updated_at
		) VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (appointment_id) DO UPDATE
		SET progress_feedback = EXCLUDED.progress_feedback,
		    updated_at = NOW()
		RETURNING *
	`

	var record model.AppointmentRecord
	err := r.db.GetContext(ctx, &record, query, uuid.New(), appointmentID, feedback)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return &record, nil
}

func (r *appointmentRepository) GetRecord(ctx context.Context, appointmentID uuid.UUID) (*model.AppointmentRecord, error) {
	query := `SELECT * FROM appointment_records WHERE appointment_id = $1`

	var record model.AppointmentRecord
	if err := r.db.GetContext(ctx, &record, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment record")
		}
		return nil, fmt.Errorf("failed to get appointment record: %w", err)
	}
	return &record, nil
}

func (r *appointmentRepository) ListFeedbackForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.FeedbackEntry, error) {
	query := `
		SELECT ar.record_id, ar.appointment_id, ar.progress_feedback, ar.created_at,
		       a.scheduled_at, a.appointment_type,
		       c.child_name, e.full_name AS expert_name
		FROM appointment_records ar
		JOIN appointments a ON a.appointment_id = ar.appointment_id
		JOIN expert_child_links l ON l.link_id = a.link_id
		JOIN children c ON c.child_id = l.child_id
		JOIN experts e ON e.expert_id = l.expert_id
		WHERE l.parent_user_id = $1
		AND ar.progress_feedback IS NOT NULL
		ORDER BY a.scheduled_at DESC
	`

	entries := []*model.FeedbackEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}
