package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionnaireSubmission captures a parent's answers for a child as raw JSON.
type QuestionnaireSubmission struct {
	SubmissionID      uuid.UUID `json:"submission_id" db:"submission_id"`
	ParentUserID      uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	ChildID           uuid.UUID `json:"child_id" db:"child_id"`
	QuestionnaireType string    `json:"questionnaire_type" db:"questionnaire_type"`
	Responses         JSONMap   `json:"responses" db:"responses"`
	Score             *int      `json:"score,omitempty" db:"score"`
	SubmittedAt       time.Time `json:"submitted_at" db:"submitted_at"`
}

type CreateQuestionnaireRequest struct {
	ChildID           uuid.UUID              `json:"child_id" binding:"required"`
	QuestionnaireType string                 `json:"questionnaire_type" binding:"required"`
	Responses         map[string]interface{} `json:"responses" binding:"required"`
	Score             *int                   `json:"score"`
}
