// Package migrations embeds the schema migrations for the items mirror.
package migrations

import "embed"

// Files holds the *.sql migrations applied by database.CreateDatabase.
//
//go:embed *.sql
var Files embed.FS
