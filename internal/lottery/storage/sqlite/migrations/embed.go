package migrations

import "embed"

// FS contains embedded SQLite migrations for lottery storage.
//
//go:embed *.sql
var FS embed.FS
