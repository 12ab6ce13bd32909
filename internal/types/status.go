package types

// Status is a type for the lifecycle status of a persisted resource in the database.
// This is used for soft deletion and to determine if a row should be included in queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
