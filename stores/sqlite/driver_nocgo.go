//go:build !cgo

package sqlite

import _ "modernc.org/sqlite"

// driverName falls back to the pure Go driver when cgo is disabled.
const driverName = "sqlite"
