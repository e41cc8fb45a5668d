package config

import (
	"context"
	"fmt"

	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/livefire2015/ez-club-ledger/src/storage/jsonfile"
	"github.com/livefire2015/ez-club-ledger/src/storage/memory"
	"github.com/livefire2015/ez-club-ledger/src/storage/sqlstore"
)

// OpenStore opens the store selected by the storage settings
func (c *Config) OpenStore(ctx context.Context) (storage.Store, error) {
	switch c.Storage.Driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverJSONFile:
		s, err := jsonfile.Open(c.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, DriverSQLite:
		s, err := sqlstore.Open(ctx, c.Storage.Driver, c.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
}
