/*
Package history persists the watermark of the newest disclosure already
reported for each site.
*/
package history

import (
	"context"
	"fmt"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"go.uber.org/zap"
)

// LastTimeField is the field under which a site's watermark is stored.
const LastTimeField = "lastTime"

// Key identifies a stored value by domain and field name.
type Key struct {
	Domain string
	Field  string
}

func (k Key) String() string {
	return k.Domain + "/" + k.Field
}

// WatermarkKey returns the key holding the watermark for site.
func WatermarkKey(site string) Key {
	return Key{Domain: site, Field: LastTimeField}
}

// Store is a small integer key-value store.
type Store interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key Key) (int64, bool, error)
	Set(ctx context.Context, key Key, value int64) error
	Close() error
}

// LoadWatermark reads the watermark for key. Absent values and read
// failures both yield 0 so the next scan starts from the beginning of the
// day.
func LoadWatermark(ctx context.Context, store Store, key Key, logger *zap.Logger) types.Watermark {
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read watermark, starting from zero", zap.Stringer("key", key), zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	return types.Watermark(v)
}

// Open returns the store backend named by kind.
func Open(kind, dsn string, logger *zap.Logger) (Store, error) {
	switch kind {
	case "", "sqlite":
		return OpenSQLite(dsn, logger)
	case "file":
		return NewFileStore(dsn, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", kind)
	}
}
