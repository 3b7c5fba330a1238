package sqldb

import "context"

const deleteAllItems = `DELETE FROM items`

func (q *Queries) DeleteAllItems(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllItems)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countItems = `SELECT COUNT(*) FROM items`

func (q *Queries) CountItems(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countItems)
	var count int64
	err := row.Scan(&count)
	return count, err
}
