package library

import (
	"errors"
	"path/filepath"
	"strings"
)

// PhotoPath identifies a photo by the path of its file
type PhotoPath string

func (p PhotoPath) String() string {
	return string(p)
}

// Name returns the base name of the file
func (p PhotoPath) Name() string {
	return filepath.Base(string(p))
}

// Ext returns the lower case extension of the file without the dot
func (p PhotoPath) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(string(p))), ".")
}

func pathsToStrings(paths []PhotoPath) []string {
	s := make([]string, len(paths))
	for i, p := range paths {
		s[i] = string(p)
	}
	return s
}

var (
	ErrInvalidSortKey  = errors.New("Invalid sort key")
	ErrInvalidFilter   = errors.New("Invalid filter")
	ErrNotInCollection = errors.New("Photo is not in the collection")
	ErrNotDisplayed    = errors.New("Photo is hidden by the current filter or search")
	ErrFileMissing     = errors.New("Photo file does not exist anymore")
	ErrNoSelection     = errors.New("No photo selected")
)
