package tags

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/h2non/filetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"
)

var ErrNoExif = errors.New("format does not carry EXIF data")

// file types goexif can decode
var exifContainers = map[string]bool{
	"jpg": true,
	"tif": true,
	"cr2": true,
}

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Extractor reads the tags of image files
type Extractor struct {
	fs filesystem.FS
}

func NewExtractor(fs filesystem.FS) *Extractor {
	return &Extractor{fs: fs}
}

// Extract reads the file at path once and returns its tags. Extract never
// fails: unreadable files and files without EXIF data result in an empty
// Set, damaged EXIF data in the tags that could still be decoded.
func (e *Extractor) Extract(ctx context.Context, path string) Set {
	log := logging.From(ctx).Named("extractor").With(zap.String("path", path))
	in, err := e.fs.Open(path)
	if err != nil {
		log.Debug("Cannot open file", zap.Error(err))
		return Set{}
	}
	defer in.Close()
	tags, err := Decode(in)
	if err != nil {
		if tags == nil {
			log.Debug("No tags read", zap.Error(err))
			return Set{}
		}
		log.Debug("Damaged EXIF data, using partial tags", zap.Int("tags", len(tags)), zap.Error(err))
	}
	return tags
}

// Decode reads all tags from r. If the data is an EXIF container with minor
// format errors, the tags decoded so far are returned together with the error.
func Decode(r io.Reader) (Set, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	kind, err := filetype.Match(buf)
	if err != nil {
		return nil, err
	}
	if !exifContainers[kind.Extension] {
		return nil, ErrNoExif
	}
	x, err := exif.Decode(bytes.NewReader(buf))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return nil, err
	}
	tags := make(Set)
	if walkErr := x.Walk(collector(tags)); walkErr != nil {
		return nil, walkErr
	}
	if err != nil {
		return tags, err
	}
	return tags, nil
}

// pointers to sub-directories, not tags
var skipped = map[exif.FieldName]bool{
	exif.ExifIFDPointer:             true,
	exif.GPSInfoIFDPointer:          true,
	exif.InteroperabilityIFDPointer: true,
}

type collector Set

func (c collector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if skipped[name] {
		return nil
	}
	c[string(name)] = valueOf(tag)
	return nil
}

func valueOf(tag *tiff.Tag) Value {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			break
		}
		return TextValue(strings.TrimRight(s, "\x00 "))
	case tiff.RatVal:
		ratios := make([]Ratio, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return Value{Kind: Other, Text: tag.String()}
			}
			ratios = append(ratios, Ratio{Num: num, Den: den})
		}
		return RationalValue(ratios...)
	case tiff.IntVal:
		ints := make([]int64, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			n, err := tag.Int64(i)
			if err != nil {
				return Value{Kind: Other, Text: tag.String()}
			}
			ints = append(ints, n)
		}
		return IntValue(ints...)
	}
	return Value{Kind: Other, Text: tag.String()}
}
