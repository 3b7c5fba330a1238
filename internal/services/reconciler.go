// Package services holds the sync pipeline: reconciliation of the reminders
// snapshot, location enrichment, and grouping for display.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/lookup"
	"github.com/aisle-md/aislemd/internal/reminders"
)

// StalenessWindow is how long a located item is trusted before it is looked up again.
const StalenessWindow = 6 * time.Hour

// WorkItem is an item selected for a lookup in the current pass.
type WorkItem struct {
	ID   string
	Name string
	// UpdatedAt is the row's timestamp after reconciliation.
	UpdatedAt time.Time
}

// ReconcileResult describes one reconciliation pass.
type ReconcileResult struct {
	Queue    []WorkItem
	Inserted int
	Deleted  int
	Renamed  int
}

// Reconciler applies a reminders snapshot to the item store.
type Reconciler struct {
	store  ItemStore
	now    Clock
	logger *zap.Logger
}

func NewReconciler(store ItemStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, now: systemClock, logger: logger}
}

// WithClock replaces the time source.
func (r *Reconciler) WithClock(now Clock) *Reconciler {
	r.now = now
	return r
}

// Reconcile deletes items missing from snapshot, inserts new ones, stores
// renames, and returns the items that need a lookup in snapshot order. All
// writes happen in one transaction.
func (r *Reconciler) Reconcile(ctx context.Context, snapshot []reminders.Reminder) (*ReconcileResult, error) {
	now := r.now()
	result := &ReconcileResult{}

	err := r.store.WithTx(ctx, func(txCtx context.Context, tx database.ItemTx) error {
		existing, err := tx.ListItems(txCtx)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		wanted := make(map[string]bool, len(snapshot))
		for _, item := range snapshot {
			wanted[item.ExternalID] = true
		}

		stored := make(map[string]database.ItemRecord, len(existing))
		for _, rec := range existing {
			if !wanted[rec.ID] {
				if err := tx.DeleteItem(txCtx, rec.ID); err != nil {
					return fmt.Errorf("delete item %s: %w", rec.ID, err)
				}
				result.Deleted++
				continue
			}
			stored[rec.ID] = rec
		}

		seen := make(map[string]bool, len(snapshot))
		for _, item := range snapshot {
			if seen[item.ExternalID] {
				continue
			}
			seen[item.ExternalID] = true

			rec, ok := stored[item.ExternalID]
			if !ok {
				if err := tx.InsertItem(txCtx, item.ExternalID, item.Title, now); err != nil {
					return fmt.Errorf("insert item %s: %w", item.ExternalID, err)
				}
				result.Inserted++
				result.Queue = append(result.Queue, WorkItem{ID: item.ExternalID, Name: item.Title, UpdatedAt: now})
				continue
			}

			renamed := rec.Name != item.Title
			if renamed {
				if err := tx.RenameItem(txCtx, rec.ID, item.Title, now); err != nil {
					return fmt.Errorf("rename item %s: %w", rec.ID, err)
				}
				rec.UpdatedAt = now
				result.Renamed++
			}

			if renamed || isStale(rec, now) || hasRetryableError(rec) {
				result.Queue = append(result.Queue, WorkItem{ID: rec.ID, Name: item.Title, UpdatedAt: rec.UpdatedAt})
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	r.logger.Debug("reconciled snapshot",
		zap.Int("snapshot", len(snapshot)),
		zap.Int("inserted", result.Inserted),
		zap.Int("deleted", result.Deleted),
		zap.Int("renamed", result.Renamed),
		zap.Int("queued", len(result.Queue)),
	)

	return result, nil
}

func isStale(rec database.ItemRecord, now time.Time) bool {
	return now.Sub(rec.UpdatedAt) >= StalenessWindow
}

func hasRetryableError(rec database.ItemRecord) bool {
	return rec.Error != nil && !lookup.IsTerminal(*rec.Error)
}
