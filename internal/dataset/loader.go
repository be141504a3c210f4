package dataset

import (
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/velorisk/riskmap/internal/cache"
)

// Loader memoizes Load by absolute file path. Concurrent calls for the
// same path share a single read.
type Loader struct {
	cache *cache.Cache[*Dataset]
	group singleflight.Group
	load  func(string) (*Dataset, error)
}

// NewLoader creates a Loader backed by an LRU cache of the given size and TTL.
func NewLoader(maxEntries int, ttl time.Duration) *Loader {
	return &Loader{
		cache: cache.New[*Dataset](maxEntries, ttl),
		load:  Load,
	}
}

// Load returns the dataset at path, reading it from disk on a cache miss.
func (l *Loader) Load(path string) (*Dataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: resolve %s", path)
	}

	if ds, ok := l.cache.Get(abs); ok {
		return ds, nil
	}

	v, err, _ := l.group.Do(abs, func() (any, error) {
		if ds, ok := l.cache.Get(abs); ok {
			return ds, nil
		}
		ds, err := l.load(abs)
		if err != nil {
			return nil, err
		}
		l.cache.Put(abs, ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Forget drops a cached dataset so the next Load rereads it.
func (l *Loader) Forget(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.cache.Invalidate(abs)
}

// Stats returns the loader cache statistics.
func (l *Loader) Stats() cache.Stats {
	return l.cache.Stats()
}
