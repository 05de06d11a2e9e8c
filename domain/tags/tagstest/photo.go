// Package tagstest builds image files with EXIF tags for tests.
package tagstest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"bitbucket.org/kleinnic74/geosnap/domain/tags"
)

const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5

	tagMake         = 0x010F
	tagModel        = 0x0110
	tagExifPointer  = 0x8769
	tagGPSPointer   = 0x8825
	tagExposure     = 0x829A
	tagFNumber      = 0x829D
	tagISO          = 0x8827
	tagDateOriginal = 0x9003
	tagFocalLength  = 0x920A
	tagLensModel    = 0xA434
	tagGPSLatRef    = 0x0001
	tagGPSLat       = 0x0002
	tagGPSLonRef    = 0x0003
	tagGPSLon       = 0x0004
	tagGPSAlt       = 0x0006
)

var order = binary.LittleEndian

// Photo describes the tags to write. Empty fields are not written.
type Photo struct {
	Make             string
	Model            string
	LensModel        string
	DateTimeOriginal string
	ISO              uint16
	ExposureTime     []tags.Ratio
	FNumber          []tags.Ratio
	FocalLength      []tags.Ratio
	Latitude         []tags.Ratio
	LatitudeRef      string
	Longitude        []tags.Ratio
	LongitudeRef     string
	Altitude         []tags.Ratio

	// Size of the JPEG image, 8x8 if not set
	Width, Height int

	// GPSOffset replaces the offset of the GPS directory when set, pointing
	// it past the end of the data produces a damaged file
	GPSOffset uint32
}

// DMS returns a degrees/minutes/seconds triple of whole numbers
func DMS(d, m, s int64) []tags.Ratio {
	return []tags.Ratio{{Num: d, Den: 1}, {Num: m, Den: 1}, {Num: s, Den: 1}}
}

func R(num, den int64) []tags.Ratio {
	return []tags.Ratio{{Num: num, Den: den}}
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func rationals(tag uint16, rs []tags.Ratio) entry {
	data := make([]byte, 0, 8*len(rs))
	for _, r := range rs {
		data = order.AppendUint32(data, uint32(r.Num))
		data = order.AppendUint32(data, uint32(r.Den))
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(rs)), data: data}
}

func short(tag uint16, v uint16) entry {
	return entry{tag: tag, typ: typeShort, count: 1, data: order.AppendUint16(nil, v)}
}

func long(tag uint16, v uint32) entry {
	return entry{tag: tag, typ: typeLong, count: 1, data: order.AppendUint32(nil, v)}
}

// encodeIFD writes a directory located at start, values larger than four
// bytes follow the directory
func encodeIFD(entries []entry, start uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
	var out, extra bytes.Buffer
	dataStart := start + 2 + 12*uint32(len(entries)) + 4
	binary.Write(&out, order, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&out, order, e.tag)
		binary.Write(&out, order, e.typ)
		binary.Write(&out, order, e.count)
		if len(e.data) <= 4 {
			value := make([]byte, 4)
			copy(value, e.data)
			out.Write(value)
			continue
		}
		binary.Write(&out, order, dataStart+uint32(extra.Len()))
		extra.Write(e.data)
		if extra.Len()%2 == 1 {
			extra.WriteByte(0)
		}
	}
	binary.Write(&out, order, uint32(0))
	out.Write(extra.Bytes())
	return out.Bytes()
}

// TIFF returns the tags as little-endian TIFF data
func (p Photo) TIFF() []byte {
	var ifd0, exifIFD, gpsIFD []entry
	if p.Make != "" {
		ifd0 = append(ifd0, ascii(tagMake, p.Make))
	}
	if p.Model != "" {
		ifd0 = append(ifd0, ascii(tagModel, p.Model))
	}
	if p.LensModel != "" {
		exifIFD = append(exifIFD, ascii(tagLensModel, p.LensModel))
	}
	if p.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, ascii(tagDateOriginal, p.DateTimeOriginal))
	}
	if p.ISO != 0 {
		exifIFD = append(exifIFD, short(tagISO, p.ISO))
	}
	if p.ExposureTime != nil {
		exifIFD = append(exifIFD, rationals(tagExposure, p.ExposureTime))
	}
	if p.FNumber != nil {
		exifIFD = append(exifIFD, rationals(tagFNumber, p.FNumber))
	}
	if p.FocalLength != nil {
		exifIFD = append(exifIFD, rationals(tagFocalLength, p.FocalLength))
	}
	if p.LatitudeRef != "" {
		gpsIFD = append(gpsIFD, ascii(tagGPSLatRef, p.LatitudeRef))
	}
	if p.Latitude != nil {
		gpsIFD = append(gpsIFD, rationals(tagGPSLat, p.Latitude))
	}
	if p.LongitudeRef != "" {
		gpsIFD = append(gpsIFD, ascii(tagGPSLonRef, p.LongitudeRef))
	}
	if p.Longitude != nil {
		gpsIFD = append(gpsIFD, rationals(tagGPSLon, p.Longitude))
	}
	if p.Altitude != nil {
		gpsIFD = append(gpsIFD, rationals(tagGPSAlt, p.Altitude))
	}

	// pointers are placeholders until the layout is known
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, long(tagExifPointer, 0))
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, long(tagGPSPointer, 0))
	}
	const ifd0Start = 8
	exifStart := uint32(ifd0Start + len(encodeIFD(ifd0, 0)))
	gpsStart := exifStart
	if len(exifIFD) > 0 {
		gpsStart += uint32(len(encodeIFD(exifIFD, 0)))
	}
	for i := range ifd0 {
		switch ifd0[i].tag {
		case tagExifPointer:
			ifd0[i] = long(tagExifPointer, exifStart)
		case tagGPSPointer:
			if p.GPSOffset != 0 {
				ifd0[i] = long(tagGPSPointer, p.GPSOffset)
			} else {
				ifd0[i] = long(tagGPSPointer, gpsStart)
			}
		}
	}

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, order, uint16(42))
	binary.Write(&out, order, uint32(ifd0Start))
	out.Write(encodeIFD(ifd0, ifd0Start))
	if len(exifIFD) > 0 {
		out.Write(encodeIFD(exifIFD, exifStart))
	}
	if len(gpsIFD) > 0 {
		out.Write(encodeIFD(gpsIFD, gpsStart))
	}
	return out.Bytes()
}

// JPEG returns a small JPEG image carrying the tags in its APP1 segment
func (p Photo) JPEG() []byte {
	w, h := p.Width, p.Height
	if w == 0 || h == 0 {
		w, h = 8, 8
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = color.Gray{Y: uint8(i)}.Y
	}
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, nil); err != nil {
		panic(err)
	}
	payload := append([]byte("Exif\x00\x00"), p.TIFF()...)
	var out bytes.Buffer
	out.Write(encoded.Bytes()[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(encoded.Bytes()[2:])
	return out.Bytes()
}

// WriteJPEG writes the photo as JPEG into dir and returns its path
func (p Photo) WriteJPEG(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, p.JPEG(), 0644); err != nil {
		t.Fatalf("Failed to write test photo %s: %s", path, err)
	}
	return path
}
