package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const defaultDirMode = 0755

// FileInfo is the subset of file attributes shown for a photo
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Created  time.Time `json:"created"`
}

// FS gives read access to the files of a collection. All operations may
// fail, callers degrade to "no metadata" in that case.
type FS interface {
	Stat(path string) (FileInfo, error)
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
}

type localFS struct{}

// Local is the FS of the local operating system
var Local FS = localFS{}

func (localFS) Stat(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	if fi.IsDir() {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: errors.New("is a directory")}
	}
	return FileInfo{
		Name:     fi.Name(),
		Size:     fi.Size(),
		Modified: fi.ModTime().UTC(),
		Created:  changeTime(fi).UTC(),
	}, nil
}

func (localFS) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func (localFS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// DataDir is the directory where the application keeps its own files
type DataDir string

func NewDataDir(basedir string) (DataDir, error) {
	absdir, err := filepath.Abs(basedir)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(absdir, defaultDirMode); err != nil {
		return "", err
	}
	return DataDir(absdir), nil
}

func (d DataDir) Path(subpath string) string {
	return filepath.Join(string(d), subpath)
}
