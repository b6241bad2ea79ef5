package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/comigor/tenant-console/internal/config"
)

// Open builds the Directory selected by cfg.Directory.Provider. The returned
// close function releases the local store, if any.
func Open(ctx context.Context, cfg config.Config) (Directory, func() error, error) {
	switch cfg.Directory.Provider {
	case config.DirectoryREST, "":
		return NewREST(cfg.Admin.URL, &http.Client{}), func() error { return nil }, nil
	case config.DirectorySQLite:
		db, err := OpenSQLite(ctx, cfg.Directory.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown directory provider %q", cfg.Directory.Provider)
	}
}
