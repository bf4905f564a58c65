package models

import "time"

// MaterialKind discriminates how PathOrURL is interpreted.
type MaterialKind string

const (
	MaterialKindLink MaterialKind = "link"
	MaterialKindFile MaterialKind = "file"
)

// Material is a study resource attached to exactly one module. For file-kind
// materials PathOrURL is the storage path; for links it is the URL itself.
type Material struct {
	ID        string       `db:"id" json:"id"`
	ModuleID  string       `db:"module_id" json:"module_id"`
	Title     string       `db:"title" json:"title"`
	Kind      MaterialKind `db:"kind" json:"kind"`
	PathOrURL string       `db:"path_or_url" json:"path_or_url"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
