package rest

import (
	"net/http"

	"bitbucket.org/kleinnic74/geosnap/cache"
	"github.com/gorilla/mux"
)

// CacheHandler reports the usage of the metadata caches
type CacheHandler struct {
	stats func() []cache.Stats
}

func NewCacheHandler(stats func() []cache.Stats) *CacheHandler {
	return &CacheHandler{stats: stats}
}

func (h *CacheHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/caches", h.getCaches).Methods(http.MethodGet).Name("/caches")
}

func (h *CacheHandler) getCaches(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, simplePayload{Data: h.stats()})
}
