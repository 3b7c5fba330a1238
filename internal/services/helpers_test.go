package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/reminders"
)

var (
	_ ItemStore = (*database.ItemRepository)(nil)

	baseTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func setupServiceDB(t *testing.T) (*database.Context, *database.ItemRepository) {
	t.Helper()
	ctx, err := database.CreateDatabase(database.MemoryPath)
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}

	t.Cleanup(func() {
		if err := database.CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx, database.NewItemRepository(ctx)
}

type seedItem struct {
	id        string
	name      string
	aisle     *string
	image     *string
	errCode   *string
	updatedAt time.Time
}

func seed(t *testing.T, dbCtx *database.Context, items ...seedItem) {
	t.Helper()
	for _, it := range items {
		_, err := dbCtx.DB.Exec(
			`INSERT INTO items (id, name, aisle, image, error, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			it.id, it.name, it.aisle, it.image, it.errCode, it.updatedAt.UTC(), it.updatedAt.UTC(),
		)
		require.NoError(t, err, "seed %s", it.id)
	}
}

func findItem(t *testing.T, repo *database.ItemRepository, id string) *database.ItemRecord {
	t.Helper()
	rec, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err, "FindByID %s", id)
	return rec
}

func queueIDs(queue []WorkItem) []string {
	ids := make([]string, 0, len(queue))
	for _, item := range queue {
		ids = append(ids, item.ID)
	}
	return ids
}

func snapshot(pairs ...string) []reminders.Reminder {
	out := make([]reminders.Reminder, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, reminders.Reminder{ExternalID: pairs[i], Title: pairs[i+1]})
	}
	return out
}

func ptr(s string) *string { return &s }

var errInjected = errors.New("injected failure")

// failingStore wraps a real store and fails InsertItem for one id.
type failingStore struct {
	*database.ItemRepository
	failInsert string
}

func (s *failingStore) WithTx(ctx context.Context, fn func(context.Context, database.ItemTx) error) error {
	return s.ItemRepository.WithTx(ctx, func(txCtx context.Context, tx database.ItemTx) error {
		return fn(txCtx, &failingTx{ItemTx: tx, failInsert: s.failInsert})
	})
}

type failingTx struct {
	database.ItemTx
	failInsert string
}

func (t *failingTx) InsertItem(ctx context.Context, id, name string, at time.Time) error {
	if id == t.failInsert {
		return errInjected
	}
	return t.ItemTx.InsertItem(ctx, id, name, at)
}

// brokenTxStore reads fine but cannot open a transaction.
type brokenTxStore struct {
	*database.ItemRepository
}

func (s *brokenTxStore) WithTx(context.Context, func(context.Context, database.ItemTx) error) error {
	return errInjected
}
