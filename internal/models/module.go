package models

import "time"

// Module represents one week of curriculum. WeekNumber is immutable once the
// module is created.
type Module struct {
	ID          string    `db:"id" json:"id"`
	WeekNumber  int       `db:"week_number" json:"week_number"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
