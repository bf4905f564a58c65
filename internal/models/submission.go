package models

import "time"

// Submission is the unique join of an assignment and a student. At most one
// row exists per (assignment_id, user_id), enforced by a unique index in the
// store. Grade fields are written only by the grading workflow.
type Submission struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	UserID       string     `db:"user_id" json:"user_id"`
	FilePath     *string    `db:"file_path" json:"file_path,omitempty"`
	TextResponse *string    `db:"text_response" json:"text_response,omitempty"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
	Grade        *float64   `db:"grade" json:"grade,omitempty"`
	Feedback     *string    `db:"feedback" json:"feedback,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	GradedBy     *string    `db:"graded_by" json:"graded_by,omitempty"`
}

// SubmissionDetail joins a submission with assignment and module context for
// grading queues and student dashboards.
type SubmissionDetail struct {
	Submission
	AssignmentTitle string `db:"assignment_title" json:"assignment_title"`
	WeekNumber      int    `db:"week_number" json:"week_number"`
	StudentName     string `db:"student_name" json:"student_name"`
}

// Eligibility is the derived certificate-eligibility fact for a student. It
// is computed on demand and never persisted.
type Eligibility struct {
	Eligible       bool    `json:"eligible"`
	AverageGrade   float64 `json:"average_grade"`
	SubmittedWeeks int     `json:"submitted_weeks"`
	GradedWeeks    int     `json:"graded_weeks"`
	RequiredWeeks  int     `json:"required_weeks"`
}
