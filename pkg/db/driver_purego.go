//go:build purego

// Pure Go SQLite driver for builds without cgo.
//
// Build with: go build -tags purego
package db

import (
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite"
