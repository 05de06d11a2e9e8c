// Package gps resolves the GPS position of a photo from its EXIF tags.
package gps

import (
	"errors"
	"fmt"
	"math"

	"bitbucket.org/kleinnic74/geosnap/domain/tags"
)

// NotAvailable is used for altitude and timestamp when the tag is missing
const NotAvailable = "N/A"

var ErrNoGPS = errors.New("no GPS position")

// MalformedTagError reports a GPS tag that cannot be converted
type MalformedTagError struct {
	Tag    string
	Reason string
}

func (e MalformedTagError) Error() string {
	return fmt.Sprintf("malformed GPS tag %s: %s", e.Tag, e.Reason)
}

// Record is the GPS position of a photo in signed decimal degrees
type Record struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  string  `json:"altitude"`
	Timestamp string  `json:"timestamp"`
}

// Resolve returns the GPS record of the given tags, or nil if the tags have no
// usable position
func Resolve(t tags.Set) *Record {
	r, _ := Parse(t)
	return r
}

// Parse works like Resolve but reports why no record could be produced:
// ErrNoGPS when latitude or longitude is missing, a MalformedTagError
// otherwise.
func Parse(t tags.Set) (*Record, error) {
	latTag, hasLat := t[tags.GPSLatitude]
	lonTag, hasLon := t[tags.GPSLongitude]
	if !hasLat || !hasLon {
		return nil, ErrNoGPS
	}
	lat, err := degrees(tags.GPSLatitude, latTag)
	if err != nil {
		return nil, err
	}
	lon, err := degrees(tags.GPSLongitude, lonTag)
	if err != nil {
		return nil, err
	}
	if ref, _ := t.Text(tags.GPSLatitudeRef); ref == "S" {
		lat = -lat
	}
	if ref, _ := t.Text(tags.GPSLongitudeRef); ref == "W" {
		lon = -lon
	}
	if math.Abs(lat) > 90 {
		return nil, MalformedTagError{Tag: tags.GPSLatitude, Reason: fmt.Sprintf("%f out of range", lat)}
	}
	if math.Abs(lon) > 180 {
		return nil, MalformedTagError{Tag: tags.GPSLongitude, Reason: fmt.Sprintf("%f out of range", lon)}
	}
	r := Record{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  NotAvailable,
		Timestamp: NotAvailable,
	}
	if v, found := t[tags.GPSAltitude]; found {
		if v.Kind != tags.Rational || len(v.Ratios) == 0 {
			return nil, MalformedTagError{Tag: tags.GPSAltitude, Reason: "not a rational"}
		}
		alt, err := v.Ratios[0].Float()
		if err != nil {
			return nil, MalformedTagError{Tag: tags.GPSAltitude, Reason: err.Error()}
		}
		r.Altitude = fmt.Sprintf("%.1f m", alt)
	}
	if ts, found := t.String(tags.DateTimeOriginal); found {
		r.Timestamp = ts
	}
	return &r, nil
}

func degrees(name string, v tags.Value) (float64, error) {
	if v.Kind != tags.Rational {
		return 0, MalformedTagError{Tag: name, Reason: "not a rational"}
	}
	if len(v.Ratios) < 3 {
		return 0, MalformedTagError{Tag: name, Reason: fmt.Sprintf("%d values instead of 3", len(v.Ratios))}
	}
	var dms [3]float64
	for i := range dms {
		f, err := v.Ratios[i].Float()
		if err != nil {
			return 0, MalformedTagError{Tag: name, Reason: err.Error()}
		}
		dms[i] = f
	}
	return dms[0] + dms[1]/60 + dms[2]/3600, nil
}

func (r Record) Point() Point {
	return PointFromLatLon(r.Latitude, r.Longitude)
}

func (r Record) String() string {
	return fmt.Sprintf("[%f;%f]", r.Latitude, r.Longitude)
}

// ISO6709 returns the position as ISO 6709 string
func (r Record) ISO6709() string {
	return fmt.Sprintf("%+010.6f%+011.6f/", r.Latitude, r.Longitude)
}

// MapURL returns a link showing the position on Google Maps
func (r Record) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", r.Latitude, r.Longitude)
}
