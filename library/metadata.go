package library

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/geosnap/cache"
	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MetadataSource gives access to the metadata of photos, values are computed
// on first access
type MetadataSource interface {
	Tags(ctx context.Context, path PhotoPath) tags.Set
	GPS(ctx context.Context, path PhotoPath) *gps.Record
	Stat(path PhotoPath) (filesystem.FileInfo, error)
	Exists(path PhotoPath) bool
	ImageConfig(path PhotoPath) (image.Config, error)
	Forget(paths ...PhotoPath)
}

// TagExtractor reads the tags of a file
type TagExtractor interface {
	Extract(ctx context.Context, path string) tags.Set
}

// PersistentStore keeps extracted tags across restarts. Entries are only
// valid for the modification time they were saved with.
type PersistentStore interface {
	Load(ctx context.Context, path string, modTime time.Time) (tags.Set, bool)
	Save(ctx context.Context, path string, modTime time.Time, t tags.Set) error
}

// MetadataStore is the MetadataSource backed by two LRU caches, one for tags
// and one for GPS records. At most one extraction per path is running at any
// time, concurrent requests for the same path wait for its result.
type MetadataStore struct {
	fs         filesystem.FS
	extractor  TagExtractor
	persistent PersistentStore

	tagCache *cache.LRU[PhotoPath, tags.Set]
	gpsCache *cache.LRU[PhotoPath, *gps.Record]
	inflight singleflight.Group

	// epoch counts the calls to Forget, values computed in an older epoch
	// are returned but not cached
	lock  sync.Mutex
	epoch uint64
}

func NewMetadataStore(fs filesystem.FS, extractor TagExtractor, capacity int) *MetadataStore {
	return &MetadataStore{
		fs:        fs,
		extractor: extractor,
		tagCache:  cache.New[PhotoPath, tags.Set]("tags", capacity),
		gpsCache:  cache.New[PhotoPath, *gps.Record]("gps", capacity),
	}
}

// WithPersistentStore makes the store read tags from p before extracting them
// and save newly extracted tags to p
func (m *MetadataStore) WithPersistentStore(p PersistentStore) *MetadataStore {
	m.persistent = p
	return m
}

func (m *MetadataStore) Tags(ctx context.Context, path PhotoPath) tags.Set {
	if t, found := m.tagCache.Get(path); found {
		return t
	}
	v, _, _ := m.inflight.Do(string(path), func() (interface{}, error) {
		if t, found := m.tagCache.Get(path); found {
			return t, nil
		}
		epoch := m.currentEpoch()
		t := m.load(ctx, path)
		m.cacheIfCurrent(epoch, func() { m.tagCache.Set(path, t) })
		return t, nil
	})
	return v.(tags.Set)
}

func (m *MetadataStore) load(ctx context.Context, path PhotoPath) tags.Set {
	if m.persistent == nil {
		return m.extractor.Extract(ctx, string(path))
	}
	log := logging.From(ctx).Named("metadata")
	fi, err := m.fs.Stat(string(path))
	if err != nil {
		return m.extractor.Extract(ctx, string(path))
	}
	if t, found := m.persistent.Load(ctx, string(path), fi.Modified); found {
		return t
	}
	t := m.extractor.Extract(ctx, string(path))
	if err := m.persistent.Save(ctx, string(path), fi.Modified, t); err != nil {
		log.Warn("Failed to save tags", zap.Stringer("path", path), zap.Error(err))
	}
	return t
}

func (m *MetadataStore) GPS(ctx context.Context, path PhotoPath) *gps.Record {
	if r, found := m.gpsCache.Get(path); found {
		return r
	}
	epoch := m.currentEpoch()
	r, err := gps.Parse(m.Tags(ctx, path))
	if err != nil && !errors.Is(err, gps.ErrNoGPS) {
		logging.From(ctx).Named("metadata").Info("Ignoring GPS tags", zap.Stringer("path", path), zap.Error(err))
	}
	m.cacheIfCurrent(epoch, func() { m.gpsCache.Set(path, r) })
	return r
}

func (m *MetadataStore) Stat(path PhotoPath) (filesystem.FileInfo, error) {
	return m.fs.Stat(string(path))
}

func (m *MetadataStore) Exists(path PhotoPath) bool {
	return m.fs.Exists(string(path))
}

// ImageConfig decodes the dimensions of the image, for the formats known to
// the image package
func (m *MetadataStore) ImageConfig(path PhotoPath) (image.Config, error) {
	in, err := m.fs.Open(string(path))
	if err != nil {
		return image.Config{}, err
	}
	defer in.Close()
	cfg, _, err := image.DecodeConfig(in)
	return cfg, err
}

// Forget drops the cached metadata of the given paths. Extractions running
// at the same time do not put their result back into the caches.
func (m *MetadataStore) Forget(paths ...PhotoPath) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.epoch++
	for _, p := range paths {
		m.tagCache.Remove(p)
		m.gpsCache.Remove(p)
	}
}

func (m *MetadataStore) currentEpoch() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.epoch
}

func (m *MetadataStore) cacheIfCurrent(epoch uint64, set func()) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.epoch == epoch {
		set()
	}
}

func (m *MetadataStore) CacheStats() []cache.Stats {
	return []cache.Stats{m.tagCache.Stats(), m.gpsCache.Stats()}
}
