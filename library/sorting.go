package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/kleinnic74/geosnap/consts"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
)

// SortKey selects the order of the photos in a collection
type SortKey string

const (
	SortByName     = SortKey("name")
	SortByDateDesc = SortKey("date_desc")
	SortByDateAsc  = SortKey("date_asc")
	SortBySize     = SortKey("size")
	SortByType     = SortKey("type")
)

var sortKeys = []SortKey{SortByName, SortByDateDesc, SortByDateAsc, SortBySize, SortByType}

func SortKeys() []SortKey {
	return append([]SortKey(nil), sortKeys...)
}

func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidSortKey, s)
	}
	return k, nil
}

func (k SortKey) Valid() bool {
	for _, v := range sortKeys {
		if k == v {
			return true
		}
	}
	return false
}

// CaptureTime returns the time a photo was taken: the EXIF original date,
// the modification time of the file if the photo has no date, or the zero
// time if neither is known
func CaptureTime(ctx context.Context, path PhotoPath, md MetadataSource) time.Time {
	if s, found := md.Tags(ctx, path).Text(tags.DateTimeOriginal); found {
		if t, err := time.ParseInLocation(tags.DateTimeLayout, s, time.UTC); err == nil {
			return t
		}
	}
	if fi, err := md.Stat(path); err == nil {
		return fi.Modified
	}
	return time.Time{}
}

type sortEntry struct {
	path PhotoPath
	name string
	date time.Time
	size int64
	ext  string
}

type byKey struct {
	entries []sortEntry
	less    func(a, b *sortEntry) bool
}

func (s byKey) Len() int           { return len(s.entries) }
func (s byKey) Swap(i, j int)      { s.entries[i], s.entries[j] = s.entries[j], s.entries[i] }
func (s byKey) Less(i, j int) bool { return s.less(&s.entries[i], &s.entries[j]) }

func byName(a, b *sortEntry) bool {
	if a.name != b.name {
		return a.name < b.name
	}
	return a.path < b.path
}

func byDate(order consts.SortOrder) func(a, b *sortEntry) bool {
	return func(a, b *sortEntry) bool {
		if !a.date.Equal(b.date) {
			if order == consts.Descending {
				return a.date.After(b.date)
			}
			return a.date.Before(b.date)
		}
		return byName(a, b)
	}
}

func bySize(a, b *sortEntry) bool {
	if a.size != b.size {
		return a.size > b.size
	}
	return byName(a, b)
}

func byType(a, b *sortEntry) bool {
	if a.ext != b.ext {
		return a.ext < b.ext
	}
	return byName(a, b)
}

// sortPaths sorts paths in place, metadata is only read if the key needs it
func sortPaths(ctx context.Context, paths []PhotoPath, key SortKey, md MetadataSource) {
	entries := make([]sortEntry, len(paths))
	for i, p := range paths {
		e := sortEntry{path: p, name: strings.ToLower(p.Name())}
		switch key {
		case SortByDateAsc, SortByDateDesc:
			e.date = CaptureTime(ctx, p, md)
		case SortBySize:
			e.size = -1
			if fi, err := md.Stat(p); err == nil {
				e.size = fi.Size
			}
		case SortByType:
			e.ext = p.Ext()
		}
		entries[i] = e
	}
	var less func(a, b *sortEntry) bool
	switch key {
	case SortByDateAsc:
		less = byDate(consts.Ascending)
	case SortByDateDesc:
		less = byDate(consts.Descending)
	case SortBySize:
		less = bySize
	case SortByType:
		less = byType
	default:
		less = byName
	}
	sort.Stable(byKey{entries: entries, less: less})
	for i := range entries {
		paths[i] = entries[i].path
	}
}
