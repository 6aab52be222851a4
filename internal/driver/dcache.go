package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"gscript/internal/project"
)

// diskCacheSchemaVersion guards DiskPayload's on-disk layout; bump it
// whenever the struct shape changes so a stale cache is ignored rather
// than misdecoded.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores one DiskPayload per translation unit, keyed by the
// unit's content hash, so an unchanged file can skip re-analysis on the
// next run (§6).
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// ExportedSymbol is the minimal public surface of a translation unit the
// cache remembers — enough for a future cross-unit change to tell
// whether its dependents need re-analysis, without caching the full
// diagnostic bag.
type ExportedSymbol struct {
	Name string
	Tag  int32
}

// DiskPayload is the msgpack-encoded record for one cached translation
// unit.
type DiskPayload struct {
	Schema      uint16
	Path        string
	ContentHash project.Digest
	Broken      bool
	Exports     []ExportedSymbol
}

// OpenDiskCache opens (creating if absent) the on-disk cache directory
// for app under the user's cache home.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put atomically writes payload under key.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads the payload cached under key, if any.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("driver: drop disk cache: %w", err)
	}
	return os.MkdirAll(c.dir, 0o755)
}
