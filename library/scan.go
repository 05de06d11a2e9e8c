package library

import (
	"context"
	"path/filepath"
	"strings"

	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/karrick/godirwalk"
	"go.uber.org/zap"
)

// ImageExtensions are the file extensions picked up when scanning folders
var ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp", "heic"}

func IsImage(path string) bool {
	ext := PhotoPath(path).Ext()
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanDir returns the images found in dir in lexical order. Hidden files and
// directories are skipped, sub-directories are only visited if recursive is
// set.
func ScanDir(ctx context.Context, dir string, recursive bool) ([]PhotoPath, error) {
	log := logging.From(ctx).Named("scan").With(zap.String("dir", dir))
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	var found []PhotoPath
	err = godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == root {
				return nil
			}
			if strings.HasPrefix(filepath.Base(path), ".") {
				return godirwalk.SkipThis
			}
			if de.IsDir() {
				if !recursive {
					return godirwalk.SkipThis
				}
				return nil
			}
			if de.IsRegular() && IsImage(path) {
				found = append(found, PhotoPath(path))
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			log.Warn("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	log.Debug("Folder scanned", zap.Int("images", len(found)))
	return found, nil
}
