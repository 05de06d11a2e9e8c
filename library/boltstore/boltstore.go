// Package boltstore keeps the extracted tags of photos in a BoltDB file so
// that they survive restarts
package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/reusee/mmh3"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const schemaVersion = 1

var (
	tagsBucket = []byte("tags")
	metaBucket = []byte("_meta")
	versionKey = []byte("version")
)

// BoltStore maps file paths to tags. An entry is only returned for the
// modification time of the file it was saved with.
type BoltStore struct {
	db *bolt.DB
}

// Open opens or creates the store at path
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	store, err := NewBoltStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewBoltStore creates a store in the given BoltDB. If the needed buckets
// do not exist, they will be created
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	if err := createBucket(db, tagsBucket); err != nil {
		return nil, err
	}
	if err := createBucket(db, metaBucket); err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(versionKey, []byte{schemaVersion})
	}); err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func createBucket(db *bolt.DB, name []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
}

// Close closes this store
func (store *BoltStore) Close() error {
	return store.db.Close()
}

type storedRatio [2]int64

type storedValue struct {
	Kind   tags.Kind     `json:"k"`
	Text   string        `json:"t,omitempty"`
	Ratios []storedRatio `json:"r,omitempty"`
	Ints   []int64       `json:"i,omitempty"`
}

type entry struct {
	Path    string                 `json:"path"`
	ModTime int64                  `json:"mtime"`
	Tags    map[string]storedValue `json:"tags"`
}

func encode(path string, modTime time.Time, t tags.Set) ([]byte, error) {
	e := entry{Path: path, ModTime: modTime.UnixNano(), Tags: make(map[string]storedValue, len(t))}
	for name, v := range t {
		sv := storedValue{Kind: v.Kind, Text: v.Text, Ints: v.Ints}
		for _, r := range v.Ratios {
			sv.Ratios = append(sv.Ratios, storedRatio{r.Num, r.Den})
		}
		e.Tags[name] = sv
	}
	return json.Marshal(&e)
}

func (e entry) decode() tags.Set {
	t := make(tags.Set, len(e.Tags))
	for name, sv := range e.Tags {
		v := tags.Value{Kind: sv.Kind, Text: sv.Text, Ints: sv.Ints}
		for _, r := range sv.Ratios {
			v.Ratios = append(v.Ratios, tags.Ratio{Num: r[0], Den: r[1]})
		}
		t[name] = v
	}
	return t
}

// Load returns the tags saved for path, if they were saved for the given
// modification time
func (store *BoltStore) Load(ctx context.Context, path string, modTime time.Time) (tags.Set, bool) {
	var found tags.Set
	err := store.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(tagsBucket).Get(pathKey(path))
		if data == nil {
			return nil
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		if e.Path != path || e.ModTime != modTime.UnixNano() {
			return nil
		}
		found = e.decode()
		return nil
	})
	if err != nil {
		logging.From(ctx).Named("boltstore").Warn("Failed to read tags", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return found, found != nil
}

// Save stores the tags of path, replacing any previous entry
func (store *BoltStore) Save(ctx context.Context, path string, modTime time.Time, t tags.Set) error {
	encoded, err := encode(path, modTime, t)
	if err != nil {
		return err
	}
	return store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tagsBucket).Put(pathKey(path), encoded)
	})
}

// Delete removes the entries of the given paths
func (store *BoltStore) Delete(ctx context.Context, paths ...string) error {
	return store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tagsBucket)
		for _, p := range paths {
			if err := b.Delete(pathKey(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored entries
func (store *BoltStore) Count() (count int) {
	store.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(tagsBucket).Stats().KeyN
		return nil
	})
	return
}

// Prune removes the entries whose path is not accepted by keep
func (store *BoltStore) Prune(ctx context.Context, keep func(path string) bool) (removed int, err error) {
	var stale [][]byte
	err = store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tagsBucket).ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || !keep(e.Path) {
				stale = append(stale, bytes.Clone(k))
			}
			return nil
		})
	})
	if err != nil || len(stale) == 0 {
		return
	}
	err = store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tagsBucket)
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		removed = len(stale)
		logging.From(ctx).Named("boltstore").Info("Pruned stale entries", zap.Int("count", removed))
	}
	return
}

func pathKey(path string) []byte {
	h := mmh3.New128()
	h.Write([]byte(path))
	return h.Sum(nil)
}
