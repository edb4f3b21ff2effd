package packing

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"path/filepath"

	"spritegen/internal/fileutil"
	"spritegen/internal/logging"
	"spritegen/internal/services"
)

// Store persists packed sheets by content key.
type Store interface {
	Get(ctx context.Context, key string) (*Sheet, bool, error)
	Put(ctx context.Context, key string, sheet *Sheet) error
}

// CachingPacker consults a Store before delegating to the wrapped Packer.
// Store failures are logged and never fail the pack.
type CachingPacker struct {
	next   Packer
	kind   string
	fs     fileutil.FS
	store  Store
	logger *slog.Logger
}

// NewCachingPacker decorates next. kind separates raster and vector entries
// that would otherwise share a key.
func NewCachingPacker(next Packer, kind string, fsys fileutil.FS, store Store, logger *slog.Logger) *CachingPacker {
	return &CachingPacker{
		next:   next,
		kind:   kind,
		fs:     fsys,
		store:  store,
		logger: logging.NewComponentLogger(logger, "packcache"),
	}
}

func (c *CachingPacker) Pack(ctx context.Context, files []string, padding int) (*Sheet, error) {
	logger := logging.WithContext(ctx, c.logger)

	key, err := Key(c.fs, c.kind, files, padding)
	if err != nil {
		// the wrapped packer reports the read error
		return c.next.Pack(ctx, files, padding)
	}

	sheet, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "pack cache lookup failed", "packcache_lookup_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'spritegen cache clear'"),
			logging.String(logging.FieldImpact, "group packed without cache"),
		)
	case ok:
		logger.Debug("pack cache hit", logging.String("key", key))
		sheet.Cached = true
		return sheet, nil
	}

	sheet, err = c.next.Pack(ctx, files, padding)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, sheet); err != nil {
		logging.WarnWithContext(logger, "pack cache store failed", "packcache_store_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
			logging.String(logging.FieldImpact, "next run repacks this group"),
		)
	}
	return sheet, nil
}

// Key hashes the packing kind, padding, file names, and file contents.
func Key(fsys fileutil.FS, kind string, files []string, padding int) (string, error) {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	_ = binary.Write(h, binary.BigEndian, int64(padding))
	for _, file := range files {
		data, err := fsys.ReadFile(file)
		if err != nil {
			return "", services.Wrap(services.ErrPacking, "", "hash icon", IconName(file), err)
		}
		h.Write([]byte(filepath.Base(file)))
		h.Write([]byte{0})
		_ = binary.Write(h, binary.BigEndian, int64(len(data)))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
