package core

import (
	"fmt"
	"os"

	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/internal/infra/persistence/postgres"
	"fleetcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	FLEETCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	FLEETCORE_SQLITE_PATH: path to sqlite file (default ./fleetcore.db)
//	FLEETCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("FLEETCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewSeededStore(engine), nil
	case StorageSQLite:
		path := os.Getenv("FLEETCORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("FLEETCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
