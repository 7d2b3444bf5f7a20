package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SpeechSubmission holds a stored recording awaiting or past analysis.
type SpeechSubmission struct {
	SubmissionID uuid.UUID `json:"submission_id" db:"submission_id"`
	ParentUserID uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	ChildID      uuid.UUID `json:"child_id" db:"child_id"`
	RecordingKey string    `json:"recording_key" db:"recording_key"`
	RecordingURL string    `json:"recording_url" db:"recording_url"`
	Duration     float64   `json:"duration" db:"duration"`
	Format       string    `json:"format" db:"format"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

// SpeechResult stores the raw analyzer payload verbatim.
type SpeechResult struct {
	ResultID     uuid.UUID       `json:"result_id" db:"result_id"`
	SubmissionID uuid.UUID       `json:"submission_id" db:"submission_id"`
	Result       json.RawMessage `json:"result" db:"result"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type CreateSpeechSubmissionRequest struct {
	ChildID  uuid.UUID `form:"child_id" binding:"required"`
	Duration float64   `form:"duration"`
}

// SpeechSubmissionResponse carries a warning when analysis could not run.
type SpeechSubmissionResponse struct {
	Submission *SpeechSubmission `json:"submission"`
	Result     json.RawMessage   `json:"result,omitempty"`
	Warning    string            `json:"warning,omitempty"`
}
