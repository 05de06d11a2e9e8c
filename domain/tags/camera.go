package tags

import (
	"fmt"
	"strconv"
)

// CameraInfo holds the formatted shooting parameters of a photo, fields are
// empty when the tag is missing or malformed
type CameraInfo struct {
	Camera      string `json:"camera,omitempty"`
	Lens        string `json:"lens,omitempty"`
	ISO         string `json:"iso,omitempty"`
	Shutter     string `json:"shutter,omitempty"`
	Aperture    string `json:"aperture,omitempty"`
	FocalLength string `json:"focalLength,omitempty"`
}

func (s Set) CameraInfo() CameraInfo {
	info := CameraInfo{Camera: s.Camera()}
	if lens, found := s.Text(LensModel); found {
		info.Lens = lens
	}
	if iso, found := s.Int(ISOSpeedRatings); found {
		info.ISO = "ISO " + strconv.FormatInt(iso, 10)
	}
	if r, found := s.Ratio(ExposureTime); found && r.Num > 0 && r.Den > 0 {
		if r.Den > r.Num {
			info.Shutter = fmt.Sprintf("1/%ds", r.Den/r.Num)
		} else {
			info.Shutter = fmt.Sprintf("%.2fs", float64(r.Num)/float64(r.Den))
		}
	}
	if f, err := ratio(s, FNumber); err == nil {
		info.Aperture = fmt.Sprintf("f/%.1f", f)
	}
	if f, err := ratio(s, FocalLength); err == nil {
		info.FocalLength = fmt.Sprintf("%.0fmm", f)
	}
	return info
}

func ratio(s Set, name string) (float64, error) {
	r, found := s.Ratio(name)
	if !found {
		return 0, fmt.Errorf("%s missing", name)
	}
	return r.Float()
}
