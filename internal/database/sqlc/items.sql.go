package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const listItems = `SELECT id, name, aisle, image, error, created_at, updated_at
FROM items
ORDER BY rowid`

func (q *Queries) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Aisle,
			&i.Image,
			&i.Error,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findItemByID = `SELECT id, name, aisle, image, error, created_at, updated_at
FROM items
WHERE id = ?`

func (q *Queries) FindItemByID(ctx context.Context, id string) (Item, error) {
	row := q.db.QueryRowContext(ctx, findItemByID, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Aisle,
		&i.Image,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertItem = `INSERT INTO items (id, name, created_at, updated_at)
VALUES (?, ?, ?, ?)`

type InsertItemParams struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) InsertItem(ctx context.Context, arg InsertItemParams) error {
	_, err := q.db.ExecContext(ctx, insertItem,
		arg.ID,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteItemByID = `DELETE FROM items WHERE id = ?`

func (q *Queries) DeleteItemByID(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteItemByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateItemName = `UPDATE items
SET name = ?, updated_at = ?
WHERE id = ?`

type UpdateItemNameParams struct {
	Name      string
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdateItemName(ctx context.Context, arg UpdateItemNameParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateItemName, arg.Name, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateItemLocation = `UPDATE items
SET aisle = ?, image = ?, error = NULL, updated_at = ?
WHERE id = ?`

type UpdateItemLocationParams struct {
	Aisle     sql.NullString
	Image     sql.NullString
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdateItemLocation(ctx context.Context, arg UpdateItemLocationParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateItemLocation,
		arg.Aisle,
		arg.Image,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateItemError = `UPDATE items
SET error = ?, updated_at = ?
WHERE id = ?`

type UpdateItemErrorParams struct {
	Error     sql.NullString
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdateItemError(ctx context.Context, arg UpdateItemErrorParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateItemError, arg.Error, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
