// Package openstreetmap resolves addresses with the Nominatim service
package openstreetmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/kleinnic74/geosnap/consts"
	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"go.uber.org/zap"
)

var ErrIllegalBoundingBox = errors.New("Not a valid bounding box")

// StatusError is returned when Nominatim answers with an unexpected status
type StatusError int

func (err StatusError) Error() string {
	return fmt.Sprintf("Nominatim returned status %d", int(err))
}

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	defaultTimeout = 10 * time.Second
)

type resolver struct {
	baseURL string
	lang    string
	client  *http.Client
}

type boundingbox gps.Rect

func (b *boundingbox) Rect() *gps.Rect {
	if b == nil {
		return nil
	}
	r := gps.Rect(*b)
	return &r
}

// UnmarshalJSON reads the Nominatim format [lat0, lat1, lon0, lon1]
func (b *boundingbox) UnmarshalJSON(data []byte) error {
	var points []string
	if err := json.Unmarshal(data, &points); err != nil {
		return nil
	}
	if len(points) == 0 {
		return nil
	}
	if len(points) != 4 {
		return ErrIllegalBoundingBox
	}
	var values [4]float64
	for i, p := range points {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ErrIllegalBoundingBox
		}
		values[i] = v
	}
	*b = boundingbox(gps.RectFrom(values[2], values[0], values[3], values[1]))
	return nil
}

type address struct {
	City       string `json:"city"`
	Town       string `json:"town"`
	Village    string `json:"village"`
	Zip        string `json:"postcode"`
	Country    string `json:"country"`
	CountryISO string `json:"country_code"`
}

func (a address) locality() string {
	for _, l := range []string{a.City, a.Town, a.Village} {
		if l != "" {
			return l
		}
	}
	return ""
}

type latlon float64

func (p *latlon) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*p = latlon(f)
	return nil
}

type location struct {
	ID          int64        `json:"osm_id"`
	OSMType     string       `json:"osm_type"`
	Lat         latlon       `json:"lat"`
	Long        latlon       `json:"lon"`
	BoundingBox *boundingbox `json:"boundingbox"`
	DisplayName string       `json:"display_name"`
	Address     address      `json:"address"`
	Error       string       `json:"error"`
}

func (l location) Pos() gps.Point {
	return gps.Point{float64(l.Long), float64(l.Lat)}
}

func (l location) toAddress() *gps.Address {
	a := gps.AsAddress(l.Address.Country, l.Address.CountryISO, l.Address.locality(), l.Address.Zip)
	a.DisplayName = l.DisplayName
	a.BoundingBox = l.BoundingBox.Rect()
	if l.OSMType != "" {
		a.ID = gps.PlaceID(fmt.Sprintf("%s/%d", l.OSMType, l.ID))
	}
	return &a
}

// NewResolver returns a resolver for the public Nominatim instance asking
// for results in the given languages
func NewResolver(lang ...string) geocoding.Resolver {
	return NewResolverWithClient(&http.Client{Timeout: defaultTimeout}, lang...)
}

func NewResolverWithClient(client *http.Client, lang ...string) geocoding.Resolver {
	return NewResolverWithURL(DefaultBaseURL, client, lang...)
}

func NewResolverWithURL(baseURL string, client *http.Client, lang ...string) geocoding.Resolver {
	return &resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		lang:    strings.Join(lang, ","),
		client:  client,
	}
}

func (osm *resolver) ReverseGeocode(ctx context.Context, lat, long float64) (*gps.Address, bool, error) {
	logger, ctx := logging.SubFrom(ctx, "openstreetmap")
	url := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&addressdetails=1&zoom=14", osm.baseURL, lat, long)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", consts.UserAgent())
	if osm.lang != "" {
		req.Header.Set("Accept-Language", osm.lang)
	}
	res, err := osm.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, false, StatusError(res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, false, err
	}
	logger.Debug("reverseGeocode response", zap.ByteString("response", data))
	var location location
	if err := json.Unmarshal(data, &location); err != nil {
		return nil, false, err
	}
	if location.Error != "" {
		// Nominatim reports unknown places as {"error":"Unable to geocode"}
		logger.Info("No place at position", zap.String("reason", location.Error))
		return nil, false, nil
	}
	return location.toAddress(), true, nil
}
