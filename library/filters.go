package library

import (
	"context"
	"fmt"
	"strings"
)

// Filter selects the photos of a collection to display
type Filter interface {
	// Kind is the type of the filter as used by ParseFilter
	Kind() string
	Describe() string
	Match(ctx context.Context, path PhotoPath, md MetadataSource) bool
}

const (
	FilterHasGPS = "has_gps"
	FilterNoGPS  = "no_gps"
	FilterCamera = "camera"
)

type gpsFilter bool

var (
	// HasGPS matches photos with a GPS position
	HasGPS Filter = gpsFilter(true)
	// NoGPS matches photos without GPS position
	NoGPS Filter = gpsFilter(false)
)

func (f gpsFilter) Kind() string {
	if f {
		return FilterHasGPS
	}
	return FilterNoGPS
}

func (f gpsFilter) Describe() string {
	if f {
		return "with GPS"
	}
	return "without GPS"
}

func (f gpsFilter) Match(ctx context.Context, path PhotoPath, md MetadataSource) bool {
	return (md.GPS(ctx, path) != nil) == bool(f)
}

type cameraFilter string

// CameraFilter matches photos taken with the given camera, named as
// "<Make> <Model>"
func CameraFilter(camera string) Filter {
	return cameraFilter(strings.TrimSpace(camera))
}

func (f cameraFilter) Kind() string {
	return FilterCamera
}

func (f cameraFilter) Describe() string {
	return "taken with " + string(f)
}

func (f cameraFilter) Match(ctx context.Context, path PhotoPath, md MetadataSource) bool {
	return md.Tags(ctx, path).Camera() == string(f)
}

// ParseFilter creates the filter of the given kind, an empty kind returns a
// nil filter
func ParseFilter(kind, camera string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return nil, nil
	case FilterHasGPS:
		return HasGPS, nil
	case FilterNoGPS:
		return NoGPS, nil
	case FilterCamera:
		if strings.TrimSpace(camera) == "" {
			return nil, fmt.Errorf("%w: camera filter needs a camera", ErrInvalidFilter)
		}
		return CameraFilter(camera), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidFilter, kind)
	}
}
