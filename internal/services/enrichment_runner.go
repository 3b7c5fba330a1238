package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/lookup"
)

const (
	defaultWorkers       = 4
	defaultLookupTimeout = 10 * time.Second
)

var errLookupPanic = errors.New("lookup panicked")

// Locator resolves an item name to a store location.
type Locator interface {
	Locate(ctx context.Context, name string) (lookup.Location, error)
}

// EnrichmentReport summarises one enrichment pass.
type EnrichmentReport struct {
	Attempted int
	Enriched  int
	NotFound  int
	Failed    []Failed
}

// EnrichmentRunner looks up every queued item and writes all outcomes back in
// a single transaction once the whole queue has been drained.
type EnrichmentRunner struct {
	store   ItemStore
	locator Locator
	workers int
	timeout time.Duration
	now     Clock
	logger  *zap.Logger
}

func NewEnrichmentRunner(store ItemStore, locator Locator, logger *zap.Logger) *EnrichmentRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentRunner{
		store:   store,
		locator: locator,
		workers: defaultWorkers,
		timeout: defaultLookupTimeout,
		now:     systemClock,
		logger:  logger,
	}
}

// WithWorkers bounds the number of lookups in flight.
func (r *EnrichmentRunner) WithWorkers(n int) *EnrichmentRunner {
	if n > 0 {
		r.workers = n
	}
	return r
}

// WithTimeout bounds each lookup.
func (r *EnrichmentRunner) WithTimeout(d time.Duration) *EnrichmentRunner {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// WithClock replaces the time source.
func (r *EnrichmentRunner) WithClock(now Clock) *EnrichmentRunner {
	r.now = now
	return r
}

// Enrich drains queue. Lookup failures are recorded per item and never stop
// the batch; the returned error is only set when the write-back fails.
func (r *EnrichmentRunner) Enrich(ctx context.Context, queue []WorkItem) (*EnrichmentReport, error) {
	report := &EnrichmentReport{Attempted: len(queue)}
	if len(queue) == 0 {
		return report, nil
	}

	outcomes := make([]Outcome, len(queue))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, item := range queue {
		g.Go(func() error {
			outcomes[i] = r.locate(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	at := r.now()
	err := r.store.WithTx(ctx, func(txCtx context.Context, tx database.ItemTx) error {
		for i, outcome := range outcomes {
			stamp := at
			if queue[i].UpdatedAt.After(stamp) {
				stamp = queue[i].UpdatedAt
			}
			if err := outcome.apply(txCtx, tx, stamp); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					r.logger.Debug("item removed before write-back", zap.String("id", outcome.ItemID()))
					continue
				}
				return fmt.Errorf("write outcome for %s: %w", outcome.ItemID(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment write-back: %w", err)
	}

	for _, outcome := range outcomes {
		switch o := outcome.(type) {
		case Enriched:
			report.Enriched++
			if o.NotFound {
				report.NotFound++
			}
		case Failed:
			report.Failed = append(report.Failed, o)
		}
	}

	if len(report.Failed) > 0 {
		ids := make([]string, 0, len(report.Failed))
		codes := make([]string, 0, len(report.Failed))
		for _, f := range report.Failed {
			ids = append(ids, f.ID)
			codes = append(codes, f.Code)
		}
		r.logger.Warn("list updated but some lookups failed",
			zap.Int("failed", len(report.Failed)),
			zap.Int("attempted", report.Attempted),
			zap.Strings("items", ids),
			zap.Strings("codes", codes),
		)
	}

	return report, nil
}

type locateResult struct {
	loc lookup.Location
	err error
}

// locate runs one lookup under the per-call timeout. A locator that ignores
// its context is abandoned when the timeout fires.
func (r *EnrichmentRunner) locate(ctx context.Context, item WorkItem) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan locateResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- locateResult{err: fmt.Errorf("%w: %v", errLookupPanic, p)}
			}
		}()
		loc, err := r.locator.Locate(callCtx, item.Name)
		done <- locateResult{loc: loc, err: err}
	}()

	var res locateResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = locateResult{err: callCtx.Err()}
	}

	if res.err != nil {
		code := lookup.CodeUnknown
		var remote *lookup.RemoteError
		if errors.As(res.err, &remote) {
			code = remote.Code
		}
		r.logger.Debug("lookup failed",
			zap.String("id", item.ID),
			zap.String("name", item.Name),
			zap.String("code", code),
			zap.Error(res.err),
		)
		return Failed{ID: item.ID, Code: code, Err: res.err}
	}

	return Enriched{
		ID:       item.ID,
		Aisle:    res.loc.Aisle,
		Image:    res.loc.Image,
		NotFound: res.loc.NotFound,
	}
}
