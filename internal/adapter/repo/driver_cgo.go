//go:build sqlite_cgo

package repo

// Built with the C SQLite library:
//
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// SQLiteDriverName is the database/sql driver registered for SQLite.
	SQLiteDriverName = "sqlite3"

	BuildMode = "cgo"
)
