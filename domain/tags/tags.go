// Package tags holds the EXIF tags of a photo in a normalized form.
//
// Tag names are the field names used by github.com/rwcarlsen/goexif (for
// example GPSLatitude or DateTimeOriginal).
package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	Make             = "Make"
	Model            = "Model"
	LensModel        = "LensModel"
	ISOSpeedRatings  = "ISOSpeedRatings"
	ExposureTime     = "ExposureTime"
	FNumber          = "FNumber"
	FocalLength      = "FocalLength"
	DateTimeOriginal = "DateTimeOriginal"
	GPSLatitude      = "GPSLatitude"
	GPSLatitudeRef   = "GPSLatitudeRef"
	GPSLongitude     = "GPSLongitude"
	GPSLongitudeRef  = "GPSLongitudeRef"
	GPSAltitude      = "GPSAltitude"
)

// DateTimeLayout is the layout of EXIF date/time values
const DateTimeLayout = "2006:01:02 15:04:05"

var ErrZeroDenominator = errors.New("rational with zero denominator")

type Kind uint8

const (
	Text = Kind(iota)
	Rational
	Integer
	Other
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Rational:
		return "rational"
	case Integer:
		return "integer"
	default:
		return "other"
	}
}

type Ratio struct {
	Num int64
	Den int64
}

func (r Ratio) Float() (float64, error) {
	if r.Den == 0 {
		return 0, ErrZeroDenominator
	}
	return float64(r.Num) / float64(r.Den), nil
}

func (r Ratio) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Value is a single tag value: a string, a list of rationals or a list of
// integers. Values of other EXIF types are kept as their textual
// representation with kind Other.
type Value struct {
	Kind   Kind
	Text   string
	Ratios []Ratio
	Ints   []int64
}

func TextValue(s string) Value {
	return Value{Kind: Text, Text: s}
}

func RationalValue(r ...Ratio) Value {
	return Value{Kind: Rational, Ratios: r}
}

func IntValue(i ...int64) Value {
	return Value{Kind: Integer, Ints: i}
}

func (v Value) String() string {
	switch v.Kind {
	case Rational:
		parts := make([]string, len(v.Ratios))
		for i, r := range v.Ratios {
			parts[i] = r.String()
		}
		return join(parts)
	case Integer:
		parts := make([]string, len(v.Ints))
		for i, n := range v.Ints {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return join(parts)
	default:
		return v.Text
	}
}

func join(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// Set maps tag names to values. A Set must not be modified once it has been
// returned by an Extractor; an empty Set means no metadata could be read.
type Set map[string]Value

func (s Set) Has(name string) bool {
	_, found := s[name]
	return found
}

// Text returns the trimmed text of a tag, found is false if the tag is
// missing or not a text value
func (s Set) Text(name string) (value string, found bool) {
	v, found := s[name]
	if !found || v.Kind != Text {
		return "", false
	}
	return strings.TrimSpace(v.Text), true
}

// Ratio returns the first rational of a tag
func (s Set) Ratio(name string) (Ratio, bool) {
	v, found := s[name]
	if !found || v.Kind != Rational || len(v.Ratios) == 0 {
		return Ratio{}, false
	}
	return v.Ratios[0], true
}

// Int returns the first integer of a tag
func (s Set) Int(name string) (int64, bool) {
	v, found := s[name]
	if !found || v.Kind != Integer || len(v.Ints) == 0 {
		return 0, false
	}
	return v.Ints[0], true
}

// String returns the textual representation of any tag
func (s Set) String(name string) (string, bool) {
	v, found := s[name]
	if !found {
		return "", false
	}
	return v.String(), true
}

// Names returns the names of all tags in alphabetical order
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Camera returns "<Make> <Model>" trimmed, or an empty string when neither
// tag is set
func (s Set) Camera() string {
	manufacturer, _ := s.Text(Make)
	model, _ := s.Text(Model)
	return strings.TrimSpace(manufacturer + " " + model)
}
