package tags_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/domain/tags/tagstest"
	"bitbucket.org/kleinnic74/geosnap/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vienna = tagstest.Photo{
	Make:             "Pentax ",
	Model:            "K-3",
	LensModel:        "smc PENTAX-DA 35mm F2.4",
	DateTimeOriginal: "2019:07:14 10:23:45",
	ISO:              200,
	ExposureTime:     tagstest.R(1, 250),
	FNumber:          tagstest.R(28, 10),
	FocalLength:      tagstest.R(35, 1),
	Latitude:         tagstest.DMS(48, 12, 30),
	LatitudeRef:      "N",
	Longitude:        tagstest.DMS(16, 22, 0),
	LongitudeRef:     "E",
	Altitude:         tagstest.R(1715, 10),
}

func TestDecodeJPEG(t *testing.T) {
	set, err := tags.Decode(bytes.NewReader(vienna.JPEG()))
	require.NoError(t, err)

	camera, _ := set.Text(tags.Make)
	assert.Equal(t, "Pentax", camera)
	assert.Equal(t, "Pentax K-3", set.Camera())
	date, found := set.Text(tags.DateTimeOriginal)
	assert.True(t, found)
	assert.Equal(t, "2019:07:14 10:23:45", date)
	iso, found := set.Int(tags.ISOSpeedRatings)
	assert.True(t, found)
	assert.Equal(t, int64(200), iso)

	lat := set[tags.GPSLatitude]
	assert.Equal(t, tags.Rational, lat.Kind)
	assert.Equal(t, []tags.Ratio{{48, 1}, {12, 1}, {30, 1}}, lat.Ratios)
	ref, _ := set.Text(tags.GPSLongitudeRef)
	assert.Equal(t, "E", ref)
	alt, found := set.Ratio(tags.GPSAltitude)
	assert.True(t, found)
	assert.Equal(t, tags.Ratio{Num: 1715, Den: 10}, alt)

	assert.False(t, set.Has("ExifIFDPointer"), "sub-directory pointers are not tags")
	assert.False(t, set.Has("GPSInfoIFDPointer"))
}

func TestDecodeTIFF(t *testing.T) {
	set, err := tags.Decode(bytes.NewReader(vienna.TIFF()))
	require.NoError(t, err)
	model, _ := set.Text(tags.Model)
	assert.Equal(t, "K-3", model)
	assert.True(t, set.Has(tags.GPSLongitude))
}

func TestDecodeWithoutExif(t *testing.T) {
	data := []struct {
		name    string
		content []byte
	}{
		{name: "text", content: []byte("this is not an image")},
		{name: "empty", content: nil},
		{name: "png", content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")},
		{name: "truncated jpeg", content: vienna.JPEG()[:40]},
	}
	for _, d := range data {
		set, err := tags.Decode(bytes.NewReader(d.content))
		assert.Error(t, err, d.name)
		assert.Empty(t, set, d.name)
	}
}

func TestExtractFailsSoft(t *testing.T) {
	dir := t.TempDir()
	good := vienna.WriteJPEG(t, dir, "good.jpg")
	broken := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(broken, []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}, 0644))

	e := tags.NewExtractor(filesystem.Local)
	ctx := context.Background()

	assert.NotEmpty(t, e.Extract(ctx, good))
	assert.Equal(t, tags.Set{}, e.Extract(ctx, broken))
	assert.Equal(t, tags.Set{}, e.Extract(ctx, filepath.Join(dir, "missing.jpg")))
	assert.Equal(t, tags.Set{}, e.Extract(ctx, dir))
}

func TestExtractKeepsTagsOfDamagedFile(t *testing.T) {
	damaged := tagstest.Photo{
		Make:      "Canon",
		Model:     "EOS",
		Latitude:  tagstest.DMS(48, 12, 30),
		GPSOffset: 0xFFFFF0,
	}
	content := damaged.JPEG()

	set, err := tags.Decode(bytes.NewReader(content))
	assert.Error(t, err)
	assert.Equal(t, "Canon EOS", set.Camera())

	path := filepath.Join(t.TempDir(), "damaged.jpg")
	require.NoError(t, os.WriteFile(path, content, 0644))
	extracted := tags.NewExtractor(filesystem.Local).Extract(context.Background(), path)
	assert.Equal(t, "Canon EOS", extracted.Camera())
	assert.False(t, extracted.Has(tags.GPSLatitude))
}

func TestExtractIsDeterministic(t *testing.T) {
	path := vienna.WriteJPEG(t, t.TempDir(), "p.jpg")
	e := tags.NewExtractor(filesystem.Local)
	assert.Equal(t, e.Extract(context.Background(), path), e.Extract(context.Background(), path))
}
