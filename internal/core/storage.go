package core

import (
	"context"
	"fmt"

	"catalogcore/internal/config"
	"catalogcore/internal/slot"
	slotfs "catalogcore/internal/slot/fs"
	slotmemory "catalogcore/internal/slot/memory"
	slotpostgres "catalogcore/internal/slot/postgres"
	slots3 "catalogcore/internal/slot/s3"
	slotsqlite "catalogcore/internal/slot/sqlite"
)

// OpenSlotStore selects a slot storage backend from configuration.
// Defaults to sqlite when unset. The memory driver is per-process and only
// meaningful for tests and ephemeral runs.
func OpenSlotStore(ctx context.Context, cfg config.Config) (slot.Store, error) {
	driver := cfg.StorageDriver
	if driver == "" {
		driver = string(slot.DriverSQLite)
	}
	switch slot.Driver(driver) {
	case slot.DriverMemory:
		return slotmemory.Open(slotmemory.NewMedium()), nil
	case slot.DriverFilesystem:
		return slotfs.New(cfg.FSRoot, cfg.WatchPollInterval())
	case slot.DriverSQLite:
		return slotsqlite.New(cfg.SQLitePath, cfg.WatchPollInterval())
	case slot.DriverPostgres:
		return slotpostgres.New(cfg.PostgresDSN, cfg.WatchPollInterval())
	case slot.DriverS3:
		return slots3.New(ctx, slots3.Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			Endpoint:     cfg.S3Endpoint,
			PathStyle:    cfg.S3PathStyle,
			PollInterval: cfg.WatchPollInterval(),
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
