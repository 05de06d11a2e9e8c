package rest

import (
	"net/http"

	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"github.com/gorilla/mux"
)

type GeocacheHandler struct {
	cache *geocoding.Cache
}

func NewGeocacheHandler(cache *geocoding.Cache) *GeocacheHandler {
	return &GeocacheHandler{cache: cache}
}

func (h *GeocacheHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/geocache", h.getGeocache).Methods(http.MethodGet).Name("/geocache")
}

// getGeocache returns the cache statistics, or with ?format=svg a drawing
// of the cached places
func (h *GeocacheHandler) getGeocache(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		geocoding.WriteSVG(w, h.cache)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, h.cache.Stats())
}
