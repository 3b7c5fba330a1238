package sqldb

import (
	"database/sql"
	"time"
)

type Item struct {
	ID        string
	Name      string
	Aisle     sql.NullString
	Image     sql.NullString
	Error     sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}
