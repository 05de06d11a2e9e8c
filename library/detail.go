package library

import (
	"context"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
)

type FileDetail struct {
	filesystem.FileInfo
	HumanSize string `json:"humanSize"`
	Format    string `json:"format"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Detail is everything known about a photo
type Detail struct {
	Path   PhotoPath       `json:"path"`
	Tags   tags.Set        `json:"tags"`
	GPS    *gps.Record     `json:"gps"`
	MapURL string          `json:"mapUrl,omitempty"`
	File   FileDetail      `json:"file"`
	Camera tags.CameraInfo `json:"camera"`
}

// Detail returns the details of a photo of the collection. If the file of
// the photo does not exist anymore, ErrFileMissing is returned and the caller
// is expected to remove the photo.
func (c *Collection) Detail(ctx context.Context, path PhotoPath) (*Detail, error) {
	if !c.Contains(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotInCollection, path)
	}
	if !c.md.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
	}
	t := c.md.Tags(ctx, path)
	d := &Detail{
		Path:   path,
		Tags:   t,
		GPS:    c.md.GPS(ctx, path),
		Camera: t.CameraInfo(),
		File: FileDetail{
			Format: strings.ToUpper(path.Ext()),
		},
	}
	if d.GPS != nil {
		d.MapURL = d.GPS.MapURL()
	}
	if fi, err := c.md.Stat(path); err == nil {
		d.File.FileInfo = fi
		d.File.HumanSize = HumanSize(fi.Size)
	}
	if cfg, err := c.md.ImageConfig(path); err == nil {
		d.File.Width, d.File.Height = cfg.Width, cfg.Height
	}
	return d, nil
}

// Location is a displayed photo with a GPS position
type Location struct {
	Position int         `json:"position"`
	Path     PhotoPath   `json:"path"`
	Name     string      `json:"name"`
	GPS      *gps.Record `json:"gps"`
}

// Overview is the input for showing all displayed photos on a map
type Overview struct {
	Photos []Location `json:"photos"`
	// Center is the mean position of all photos, nil if no photo has GPS
	Center *gps.Point `json:"center,omitempty"`
}

// Locations returns the displayed photos having a GPS position, in display
// order
func (c *Collection) Locations(ctx context.Context) Overview {
	overview := Overview{Photos: []Location{}}
	var sumLat, sumLon float64
	for _, e := range c.Display() {
		r := c.md.GPS(ctx, e.Path)
		if r == nil {
			continue
		}
		overview.Photos = append(overview.Photos, Location{Position: e.Position, Path: e.Path, Name: e.Name, GPS: r})
		sumLat += r.Latitude
		sumLon += r.Longitude
	}
	if n := float64(len(overview.Photos)); n > 0 {
		center := gps.PointFromLatLon(sumLat/n, sumLon/n)
		overview.Center = &center
	}
	return overview
}

// HumanSize formats a byte count with one decimal and a binary unit
func HumanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}
