// Package kv re-exports the byte store abstractions and selects a driver from
// configuration. Packages outside kv depend on kv.Store, never on a driver.
package kv

import "kanbancore/internal/kv/core"

type (
	// Driver identifies a kv backend driver.
	Driver = core.Driver
	// Store is the interface implemented by every kv backend.
	Store = core.Store
)

const (
	// DriverMemory is the in-process driver.
	DriverMemory = core.DriverMemory
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverSQLite is the SQLite driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the Postgres driver.
	DriverPostgres = core.DriverPostgres
	// DriverRedis is the Redis driver.
	DriverRedis = core.DriverRedis
)

// ErrNotFound reports a missing key.
var ErrNotFound = core.ErrNotFound
