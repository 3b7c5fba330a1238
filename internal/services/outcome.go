package services

import (
	"context"
	"time"

	"github.com/aisle-md/aislemd/internal/database"
)

// Outcome is the result of one lookup: Enriched or Failed.
type Outcome interface {
	ItemID() string
	apply(ctx context.Context, tx database.ItemTx, at time.Time) error
}

// Enriched is a successful lookup, including a confirmed catalog miss.
type Enriched struct {
	ID       string
	Aisle    string
	Image    *string
	NotFound bool
}

func (o Enriched) ItemID() string { return o.ID }

func (o Enriched) apply(ctx context.Context, tx database.ItemTx, at time.Time) error {
	return tx.SetLocation(ctx, o.ID, o.Aisle, o.Image, at)
}

// Failed is a lookup that did not produce a location. Prior location data is kept.
type Failed struct {
	ID   string
	Code string
	Err  error
}

func (o Failed) ItemID() string { return o.ID }

func (o Failed) apply(ctx context.Context, tx database.ItemTx, at time.Time) error {
	return tx.SetError(ctx, o.ID, o.Code, at)
}

var (
	_ Outcome = Enriched{}
	_ Outcome = Failed{}
)
