// Package core defines the byte store abstraction shared by the kv drivers.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete key-value backend implementation.
type Driver string

const (
	// DriverMemory keeps values in process memory (tests, ephemeral runs).
	DriverMemory Driver = "memory"
	// DriverFilesystem stores one file per key under a root directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores one object per key in an S3 / MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverSQLite stores rows in a local SQLite kv table.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres stores rows in a Postgres kv table.
	DriverPostgres Driver = "postgres"
	// DriverRedis stores plain string values in Redis.
	DriverRedis Driver = "redis"
)

// Store is a flat byte store keyed by string.
type Store interface {
	// Get returns the value at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Driver returns the configured backend driver.
	Driver() Driver
	// Close releases backend resources.
	Close() error
}

// ErrNotFound is returned by Get when no value is stored at the key.
var ErrNotFound = errors.New("kv: key not found")
