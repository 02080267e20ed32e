package kv

import (
	"context"
	"fmt"

	kvfs "kanbancore/internal/infra/kv/fs"
	kvmemory "kanbancore/internal/infra/kv/memory"
	kvpostgres "kanbancore/internal/infra/kv/postgres"
	kvredis "kanbancore/internal/infra/kv/redis"
	kvs3 "kanbancore/internal/infra/kv/s3"
	kvsqlite "kanbancore/internal/infra/kv/sqlite"
)

type (
	// S3Config configures the s3 driver.
	S3Config = kvs3.Config
	// RedisConfig configures the redis driver.
	RedisConfig = kvredis.Config
)

// Config selects and configures a kv driver.
type Config struct {
	Driver      Driver      `yaml:"driver"`
	FSRoot      string      `yaml:"fs_root"`
	SQLitePath  string      `yaml:"sqlite_path"`
	PostgresDSN string      `yaml:"postgres_dsn"`
	Redis       RedisConfig `yaml:"redis"`
	S3          S3Config    `yaml:"s3"`
}

// Drivers lists every supported driver.
func Drivers() []Driver {
	return []Driver{DriverMemory, DriverFilesystem, DriverS3, DriverSQLite, DriverPostgres, DriverRedis}
}

// Open constructs the store selected by cfg.Driver. An empty driver selects
// the filesystem store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverMemory:
		return kvmemory.New(), nil
	case DriverFilesystem:
		return kvfs.New(cfg.FSRoot)
	case DriverS3:
		return kvs3.New(ctx, cfg.S3)
	case DriverSQLite:
		return kvsqlite.New(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return kvpostgres.New(ctx, cfg.PostgresDSN)
	case DriverRedis:
		return kvredis.New(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown kv driver %q", driver)
	}
}
