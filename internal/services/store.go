package services

import (
	"context"
	"time"

	"github.com/aisle-md/aislemd/internal/database"
)

// ItemStore is the persistence the sync pipeline needs. database.ItemRepository
// implements it against SQLite.
type ItemStore interface {
	ListItems(ctx context.Context) ([]database.ItemRecord, error)
	WithTx(ctx context.Context, fn func(context.Context, database.ItemTx) error) error
}

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
