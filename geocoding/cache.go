package geocoding

import (
	"context"
	"sync"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	geocacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocoding_cache_requests",
		Help: "Reverse geocoding requests to the geocache by result",
	}, []string{"result"})
	geocachePlaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geocoding_cache_places",
		Help: "Number of places held in the geocache",
	})
)

type Stats struct {
	Hits         int `json:"hits"`
	Misses       int `json:"misses"`
	MultiMatches int `json:"multimatches"`
	Total        int `json:"total"`
	Places       int `json:"places"`
}

// Cache is a Resolver remembering the bounding boxes of the places returned
// by its delegate. Positions inside a known bounding box are resolved
// without calling the delegate.
type Cache struct {
	delegate Resolver

	lock  sync.RWMutex
	stats Stats
	qt    *quadtree[*gps.Address]
}

func NewGeoCache(r Resolver) *Cache {
	return &Cache{delegate: r, qt: newQuadTree[*gps.Address](gps.WorldBounds)}
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.lock.RLock()
	defer c.lock.RUnlock()
	s := c.stats
	s.Places = c.qt.Len()
	return s
}

func (c *Cache) ReverseGeocode(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
	log, ctx := logging.FromWithNameAndFields(ctx, "geocache", zap.Any("pos", gps.PointFromLatLon(lat, lon)))
	places := c.findPlace(lat, lon)
	switch len(places) {
	case 1:
		c.count(func(s *Stats) { s.Hits++ }, "hit")
		return places[0], true, nil
	case 0:
		c.count(func(s *Stats) { s.Misses++ }, "miss")
		log.Debug("No place found in cache")
	default:
		c.count(func(s *Stats) { s.Misses++; s.MultiMatches++ }, "multimatch")
		log.Debug("Multiple places found in cache", zap.Int("count", len(places)))
	}
	place, found, err := c.delegate.ReverseGeocode(ctx, lat, lon)
	if err != nil || !found {
		if err == nil {
			log.Info("Place not found")
		}
		return place, found, err
	}
	if !c.Add(place) {
		log.Info("Place has no usable bounding box", zap.Stringer("place", place.ID))
	}
	return place, true, nil
}

func (c *Cache) count(f func(*Stats), result string) {
	c.lock.Lock()
	f(&c.stats)
	c.stats.Total++
	c.lock.Unlock()
	geocacheRequests.WithLabelValues(result).Inc()
}

func (c *Cache) findPlace(lat float64, lon float64) []*gps.Address {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.qt.Find(gps.PointFromLatLon(lat, lon))
}

// Add remembers place if it has a valid bounding box
func (c *Cache) Add(place *gps.Address) bool {
	if place == nil || !place.HasValidBoundingBox() {
		return false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.qt.InsertRect(*place.BoundingBox, place) {
		return false
	}
	geocachePlaces.Inc()
	return true
}

func (c *Cache) Visit(v Visitor) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	c.qt.Visit(v)
}
