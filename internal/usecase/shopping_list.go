package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/reminders"
	"github.com/aisle-md/aislemd/internal/services"
)

// Source supplies the current reminders snapshot.
type Source interface {
	Snapshot(ctx context.Context) ([]reminders.Reminder, error)
}

// Store is the item persistence used by the shopping list.
type Store interface {
	services.ItemStore
	FindByID(ctx context.Context, id string) (*database.ItemRecord, error)
}

type Options struct {
	Workers       int
	LookupTimeout time.Duration
	Logger        *zap.Logger
	Clock         services.Clock
}

// SyncReport summarises one sync pass. SourceErr is set when the reminders
// source could not be read and the stored list was served unchanged.
type SyncReport struct {
	SyncID    string
	Inserted  int
	Deleted   int
	Renamed   int
	Queued    int
	Enriched  int
	NotFound  int
	Failed    []services.Failed
	SourceErr error
}

type Result struct {
	Groups []services.Group
	// Report is nil for reads that did not sync.
	Report *SyncReport
}

type ShoppingList struct {
	mu         sync.Mutex
	store      Store
	source     Source
	reconciler *services.Reconciler
	runner     *services.EnrichmentRunner
	presenter  *services.Presenter
	logger     *zap.Logger
}

func NewShoppingList(store Store, source Source, locator services.Locator, opts Options) *ShoppingList {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reconciler := services.NewReconciler(store, logger)
	runner := services.NewEnrichmentRunner(store, locator, logger).
		WithWorkers(opts.Workers).
		WithTimeout(opts.LookupTimeout)
	if opts.Clock != nil {
		reconciler.WithClock(opts.Clock)
		runner.WithClock(opts.Clock)
	}

	return &ShoppingList{
		store:      store,
		source:     source,
		reconciler: reconciler,
		runner:     runner,
		presenter:  services.NewPresenter(store),
		logger:     logger,
	}
}

// Sync mirrors the reminders list, enriches what needs it and returns the
// grouped list. Only one sync runs at a time and a started sync finishes even
// if ctx is cancelled. When the source is unavailable the stored list is
// returned with Report.SourceErr set.
func (u *ShoppingList) Sync(ctx context.Context) (*Result, error) {
	ctx = context.WithoutCancel(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()

	report := &SyncReport{SyncID: uuid.NewString()}
	logger := u.logger.With(zap.String("sync_id", report.SyncID))

	snapshot, err := u.source.Snapshot(ctx)
	if err != nil {
		report.SourceErr = err
		logger.Error("reminders source unavailable, serving stored list", zap.Error(err))
	} else if err := u.mirror(ctx, logger, snapshot, report); err != nil {
		return nil, err
	}

	groups, err := u.presenter.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", report.SyncID, err)
	}

	return &Result{Groups: groups, Report: report}, nil
}

func (u *ShoppingList) mirror(ctx context.Context, logger *zap.Logger, snapshot []reminders.Reminder, report *SyncReport) error {
	reconciled, err := u.reconciler.Reconcile(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("sync %s: %w", report.SyncID, err)
	}
	report.Inserted = reconciled.Inserted
	report.Deleted = reconciled.Deleted
	report.Renamed = reconciled.Renamed
	report.Queued = len(reconciled.Queue)

	enriched, err := u.runner.Enrich(ctx, reconciled.Queue)
	if err != nil {
		return fmt.Errorf("sync %s: %w", report.SyncID, err)
	}
	report.Enriched = enriched.Enriched
	report.NotFound = enriched.NotFound
	report.Failed = enriched.Failed

	logger.Info("sync complete",
		zap.Int("items", len(snapshot)),
		zap.Int("inserted", report.Inserted),
		zap.Int("deleted", report.Deleted),
		zap.Int("renamed", report.Renamed),
		zap.Int("queued", report.Queued),
		zap.Int("enriched", report.Enriched),
		zap.Int("failed", len(report.Failed)),
	)
	return nil
}

// List returns the stored list without syncing.
func (u *ShoppingList) List(ctx context.Context) (*Result, error) {
	groups, err := u.presenter.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Groups: groups}, nil
}

// Item returns one stored item, or database.ErrNotFound.
func (u *ShoppingList) Item(ctx context.Context, id string) (*database.ItemRecord, error) {
	return u.store.FindByID(ctx, id)
}
