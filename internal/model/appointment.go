package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	AppointmentTypeChat     AppointmentType = "chat"
	AppointmentTypeCall     AppointmentType = "call"
	AppointmentTypePhysical AppointmentType = "physical"
	AppointmentTypeMeet     AppointmentType = "meet"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// NormalizeAppointmentType lowercases the type and folds the legacy
// google_meet spelling into "meet". Returns false for unknown types.
func NormalizeAppointmentType(raw string) (AppointmentType, bool) {
	switch strings.ToLower(raw) {
	case "chat":
		return AppointmentTypeChat, true
	case "call":
		return AppointmentTypeCall, true
	case "physical":
		return AppointmentTypePhysical, true
	case "meet", "google_meet":
		return AppointmentTypeMeet, true
	}
	return "", false
}

// Appointment belongs to exactly one expert-child link.
type Appointment struct {
	AppointmentID   uuid.UUID         `json:"appointment_id" db:"appointment_id"`
	LinkID          uuid.UUID         `json:"link_id" db:"link_id"`
	AppointmentType AppointmentType   `json:"appointment_type" db:"appointment_type"`
	ScheduledAt     time.Time         `json:"scheduled_at" db:"scheduled_at"`
	Status          AppointmentStatus `json:"status" db:"status"`
	MeetLink        *string           `json:"meet_link,omitempty" db:"meet_link"`
	Contact         *string           `json:"contact,omitempty" db:"contact"`
	Location        *string           `json:"location,omitempty" db:"location"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentRecord is the single mutable record slot kept per
// appointment (unique on appointment_id). Partial updates overwrite
// only the fields that were provided.
type AppointmentRecord struct {
	RecordID         uuid.UUID `json:"record_id" db:"record_id"`
	AppointmentID    uuid.UUID `json:"appointment_id" db:"appointment_id"`
	TherapyPlan      *string   `json:"therapy_plan" db:"therapy_plan"`
	Notes            *string   `json:"notes" db:"notes"`
	Medication       *string   `json:"medication" db:"medication"`
	ProgressFeedback *string   `json:"progress_feedback" db:"progress_feedback"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type CreateAppointmentRequest struct {
	LinkID          *uuid.UUID `json:"link_id"`
	ChildID         *uuid.UUID `json:"child_id"`
	ParentUserID    *uuid.UUID `json:"parent_user_id"`
	AppointmentType string     `json:"appointment_type" binding:"required"`
	ScheduledAt     time.Time  `json:"scheduled_at" binding:"required,futuredate"`
	MeetLink        *string    `json:"meet_link"`
	Contact         *string    `json:"contact"`
	Location        *string    `json:"location"`
}

// RecordPatch carries the provided subset of record fields.
type RecordPatch struct {
	TherapyPlan *string `json:"discussion_summary"`
	Notes       *string `json:"notes"`
	Medication  *string `json:"medication"`
}

func (p *RecordPatch) Empty() bool {
	return p.TherapyPlan == nil && p.Notes == nil && p.Medication == nil
}

type FeedbackRequest struct {
	ProgressFeedback string `json:"progress_feedback" binding:"required"`
}

type MeetingLinkRequest struct {
	Topic     string    `json:"topic" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	Duration  int       `json:"duration"`
	Timezone  string    `json:"timezone"`
}

// AppointmentDetails joins an appointment with its link context.
type AppointmentDetails struct {
	Appointment
	ParentUserID   uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	ExpertID       uuid.UUID `json:"expert_id" db:"expert_id"`
	ChildID        uuid.UUID `json:"child_id" db:"child_id"`
	ChildName      string    `json:"child_name" db:"child_name"`
	ExpertName     string    `json:"expert_name" db:"expert_name"`
	Specialization *string   `json:"specialization" db:"specialization"`
}

// FeedbackEntry is a record with feedback joined with its appointment.
type FeedbackEntry struct {
	RecordID         uuid.UUID       `json:"record_id" db:"record_id"`
	AppointmentID    uuid.UUID       `json:"appointment_id" db:"appointment_id"`
	ProgressFeedback string          `json:"progress_feedback" db:"progress_feedback"`
	ScheduledAt      time.Time       `json:"scheduled_at" db:"scheduled_at"`
	AppointmentType  AppointmentType `json:"appointment_type" db:"appointment_type"`
	ChildName        string          `json:"child_name" db:"child_name"`
	ExpertName       string          `json:"expert_name" db:"expert_name"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
