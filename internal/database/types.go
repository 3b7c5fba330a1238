package database

import (
	"time"
)

// ItemRecord represents a row in the items table: one shopping-list entry
// mirrored from the reminders source plus its last enrichment state.
type ItemRecord struct {
	ID        string
	Name      string
	Aisle     *string
	Image     *string
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
