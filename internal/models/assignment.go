package models

import "time"

// Assignment belongs to exactly one module. DueDate is advisory and is not
// enforced as a submission cutoff.
type Assignment struct {
	ID        string     `db:"id" json:"id"`
	ModuleID  string     `db:"module_id" json:"module_id"`
	Title     string     `db:"title" json:"title"`
	Prompt    *string    `db:"prompt" json:"prompt,omitempty"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// AssignmentWithWeek joins an assignment with its module week number.
type AssignmentWithWeek struct {
	Assignment
	WeekNumber int `db:"week_number" json:"week_number"`
}
