package library

import (
	"context"
	"errors"
	"image"
	"os"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
)

type fakeFile struct {
	tags     tags.Set
	size     int64
	modified time.Time
	missing  bool
}

type fakeMetadata struct {
	lock      sync.Mutex
	files     map[PhotoPath]fakeFile
	forgotten []PhotoPath
}

func newFakeMetadata(files map[PhotoPath]fakeFile) *fakeMetadata {
	return &fakeMetadata{files: files}
}

func (f *fakeMetadata) Tags(ctx context.Context, path PhotoPath) tags.Set {
	if file, found := f.files[path]; found && !file.missing && file.tags != nil {
		return file.tags
	}
	return tags.Set{}
}

func (f *fakeMetadata) GPS(ctx context.Context, path PhotoPath) *gps.Record {
	return gps.Resolve(f.Tags(ctx, path))
}

func (f *fakeMetadata) Stat(path PhotoPath) (filesystem.FileInfo, error) {
	file, found := f.files[path]
	if !found || file.missing || file.modified.IsZero() {
		return filesystem.FileInfo{}, os.ErrNotExist
	}
	return filesystem.FileInfo{Name: path.Name(), Size: file.size, Modified: file.modified, Created: file.modified}, nil
}

func (f *fakeMetadata) Exists(path PhotoPath) bool {
	file, found := f.files[path]
	return found && !file.missing
}

func (f *fakeMetadata) ImageConfig(path PhotoPath) (image.Config, error) {
	return image.Config{}, errors.New("not an image")
}

func (f *fakeMetadata) Forget(paths ...PhotoPath) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.forgotten = append(f.forgotten, paths...)
}

func withGPS(lat, lon int64) tags.Set {
	return tags.Set{
		tags.GPSLatitude:  tags.RationalValue(tags.Ratio{Num: lat, Den: 1}, tags.Ratio{Num: 0, Den: 1}, tags.Ratio{Num: 0, Den: 1}),
		tags.GPSLongitude: tags.RationalValue(tags.Ratio{Num: lon, Den: 1}, tags.Ratio{Num: 0, Den: 1}, tags.Ratio{Num: 0, Den: 1}),
	}
}

func withCamera(manufacturer, model string) tags.Set {
	return tags.Set{tags.Make: tags.TextValue(manufacturer), tags.Model: tags.TextValue(model)}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
