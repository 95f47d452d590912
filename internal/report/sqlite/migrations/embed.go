package migrations

import "embed"

// FS contains embedded SQLite migrations for the session archive sink.
//
//go:embed *.sql
var FS embed.FS
