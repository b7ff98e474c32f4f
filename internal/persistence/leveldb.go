package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	"go.uber.org/zap"
)

// OpenLevelDB opens (creating if needed) the registry database under dataDir/leveldb.
func OpenLevelDB(dataDir string, logger *zap.Logger) (*leveldb.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "leveldb")

	db, err := leveldb.OpenFile(path, &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}

	logger.Info("opened leveldb", zap.String("path", path))
	return db, nil
}
