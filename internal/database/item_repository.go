package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqldb "github.com/aisle-md/aislemd/internal/database/sqlc"
)

// ItemTx is the set of item mutations available inside one transaction.
type ItemTx interface {
	ListItems(ctx context.Context) ([]ItemRecord, error)
	InsertItem(ctx context.Context, id, name string, at time.Time) error
	DeleteItem(ctx context.Context, id string) error
	RenameItem(ctx context.Context, id, name string, at time.Time) error
	SetLocation(ctx context.Context, id, aisle string, image *string, at time.Time) error
	SetError(ctx context.Context, id, code string, at time.Time) error
}

// ItemRepository stores the mirrored shopping-list items.
type ItemRepository struct {
	ctx *Context
}

func NewItemRepository(dbCtx *Context) *ItemRepository {
	return &ItemRepository{ctx: dbCtx}
}

// ListItems returns every stored item in insertion order.
func (r *ItemRepository) ListItems(ctx context.Context) ([]ItemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}
	return listItems(ctx, queries)
}

// FindByID returns ErrNotFound when no item has the given id.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*ItemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}

	row, err := queries.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record := mapItemRow(row)
	return &record, nil
}

// WithTx runs fn inside a single transaction, committing only when fn returns nil.
func (r *ItemRepository) WithTx(ctx context.Context, fn func(context.Context, ItemTx) error) error {
	if r.ctx == nil || r.ctx.DB == nil {
		return fmt.Errorf("item repository: missing database context")
	}

	tx, err := r.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &itemTx{q: sqldb.New(tx)}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type itemTx struct {
	q *sqldb.Queries
}

var _ ItemTx = (*itemTx)(nil)

func (t *itemTx) ListItems(ctx context.Context) ([]ItemRecord, error) {
	return listItems(ctx, t.q)
}

func (t *itemTx) InsertItem(ctx context.Context, id, name string, at time.Time) error {
	return t.q.InsertItem(ctx, sqldb.InsertItemParams{
		ID:        id,
		Name:      name,
		CreatedAt: utc(at),
		UpdatedAt: utc(at),
	})
}

func (t *itemTx) DeleteItem(ctx context.Context, id string) error {
	_, err := t.q.DeleteItemByID(ctx, id)
	return err
}

func (t *itemTx) RenameItem(ctx context.Context, id, name string, at time.Time) error {
	affected, err := t.q.UpdateItemName(ctx, sqldb.UpdateItemNameParams{
		Name:      name,
		UpdatedAt: utc(at),
		ID:        id,
	})
	return expectRow(id, affected, err)
}

func (t *itemTx) SetLocation(ctx context.Context, id, aisle string, image *string, at time.Time) error {
	affected, err := t.q.UpdateItemLocation(ctx, sqldb.UpdateItemLocationParams{
		Aisle:     nullString(aisle),
		Image:     stringPtrToNullString(image),
		UpdatedAt: utc(at),
		ID:        id,
	})
	return expectRow(id, affected, err)
}

func (t *itemTx) SetError(ctx context.Context, id, code string, at time.Time) error {
	affected, err := t.q.UpdateItemError(ctx, sqldb.UpdateItemErrorParams{
		Error:     nullString(code),
		UpdatedAt: utc(at),
		ID:        id,
	})
	return expectRow(id, affected, err)
}

// expectRow reports ErrNotFound for updates that matched nothing.
func expectRow(id string, affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return nil
}

func listItems(ctx context.Context, q *sqldb.Queries) ([]ItemRecord, error) {
	rows, err := q.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ItemRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapItemRow(row))
	}
	return result, nil
}

func mapItemRow(row sqldb.Item) ItemRecord {
	return ItemRecord{
		ID:        row.ID,
		Name:      row.Name,
		Aisle:     optionalStringPtr(row.Aisle),
		Image:     optionalStringPtr(row.Image),
		Error:     optionalStringPtr(row.Error),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
