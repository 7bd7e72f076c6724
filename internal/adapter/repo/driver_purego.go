//go:build !sqlite_cgo

package repo

// Default build: pure Go SQLite, no C toolchain required.
//
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql driver registered for SQLite.
	SQLiteDriverName = "sqlite"

	BuildMode = "purego"
)
