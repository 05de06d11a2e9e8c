package rest

import (
	"context"
	"errors"
	"net/http"

	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"bitbucket.org/kleinnic74/geosnap/rest/cursor"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AddedFunc is called with the paths submitted to the collection
type AddedFunc func(ctx context.Context, paths []library.PhotoPath)

// CollectionHandler exposes the operations of a library.Collection
type CollectionHandler struct {
	collection *library.Collection
	onAdded    AddedFunc
}

func NewCollectionHandler(c *library.Collection, onAdded AddedFunc) *CollectionHandler {
	if onAdded == nil {
		onAdded = func(context.Context, []library.PhotoPath) {}
	}
	return &CollectionHandler{collection: c, onAdded: onAdded}
}

func (h *CollectionHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/photos", h.getPhotos).Methods(http.MethodGet).Name("/photos")
	r.HandleFunc("/photos", h.addPhotos).Methods(http.MethodPost).Name("/photos")
	r.HandleFunc("/photos", h.clear).Methods(http.MethodDelete).Name("/photos")
	r.HandleFunc("/folders", h.addFolder).Methods(http.MethodPost).Name("/folders")
	r.HandleFunc("/photo", h.getPhoto).Methods(http.MethodGet).Queries("path", "{path}").Name("/photo")
	r.HandleFunc("/photo", h.removePhoto).Methods(http.MethodDelete).Queries("path", "{path}").Name("/photo")
	r.HandleFunc("/sort", h.getSort).Methods(http.MethodGet).Name("/sort")
	r.HandleFunc("/sort", h.setSort).Methods(http.MethodPut).Name("/sort")
	r.HandleFunc("/filter", h.setFilter).Methods(http.MethodPut).Name("/filter")
	r.HandleFunc("/search", h.setSearch).Methods(http.MethodPut).Name("/search")
	r.HandleFunc("/selection", h.getSelection).Methods(http.MethodGet).Name("/selection")
	r.HandleFunc("/selection", h.setSelection).Methods(http.MethodPut).Name("/selection")
	r.HandleFunc("/selection/next", h.move(h.collection.Next)).Methods(http.MethodPost).Name("/selection/next")
	r.HandleFunc("/selection/previous", h.move(h.collection.Previous)).Methods(http.MethodPost).Name("/selection/previous")
	r.HandleFunc("/status", h.getStatus).Methods(http.MethodGet).Name("/status")
	r.HandleFunc("/cameras", h.getCameras).Methods(http.MethodGet).Name("/cameras")
	r.HandleFunc("/locations", h.getLocations).Methods(http.MethodGet).Name("/locations")
	r.HandleFunc("/timeline", h.getTimeline).Methods(http.MethodGet).Name("/timeline")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, library.ErrInvalidSortKey), errors.Is(err, library.ErrInvalidFilter), errors.Is(err, ErrEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotInCollection):
		return http.StatusNotFound
	case errors.Is(err, library.ErrNotDisplayed), errors.Is(err, library.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, library.ErrFileMissing):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (h *CollectionHandler) getPhotos(w http.ResponseWriter, r *http.Request) {
	c := cursor.DecodeFromRequest(r)
	entries := h.collection.Display()
	from, to, hasMore := c.Slice(len(entries))
	page := cursor.PageFor(entries[from:to], c, hasMore)
	page.Total = len(entries)
	Respond(r).WithJSON(w, http.StatusOK, page)
}

type pathsRequest struct {
	Paths []string `json:"paths"`
}

type addedResponse struct {
	Added int `json:"added"`
}

func (h *CollectionHandler) addPhotos(w http.ResponseWriter, r *http.Request) {
	var req pathsRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	paths := make([]library.PhotoPath, len(req.Paths))
	for i, p := range req.Paths {
		paths[i] = library.PhotoPath(p)
	}
	h.add(w, r, paths)
}

type folderRequest struct {
	Dir       string `json:"dir"`
	Recursive bool   `json:"recursive"`
}

func (h *CollectionHandler) addFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	paths, err := library.ScanDir(r.Context(), req.Dir, req.Recursive)
	if err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	h.add(w, r, paths)
}

func (h *CollectionHandler) add(w http.ResponseWriter, r *http.Request, paths []library.PhotoPath) {
	added := h.collection.Add(r.Context(), paths...)
	if len(added) > 0 {
		h.onAdded(r.Context(), added)
	}
	Respond(r).WithJSON(w, http.StatusOK, addedResponse{Added: len(added)})
}

func (h *CollectionHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.collection.Clear(r.Context())
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

func (h *CollectionHandler) getPhoto(w http.ResponseWriter, r *http.Request) {
	path := library.PhotoPath(r.URL.Query().Get("path"))
	detail, err := h.collection.Detail(r.Context(), path)
	if errors.Is(err, library.ErrFileMissing) {
		logging.From(r.Context()).Info("Photo file vanished, removing it", zap.Stringer("path", path))
		h.collection.Remove(r.Context(), path)
	}
	if err != nil {
		Respond(r).WithError(w, statusFor(err), err)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, detail)
}

func (h *CollectionHandler) removePhoto(w http.ResponseWriter, r *http.Request) {
	path := library.PhotoPath(r.URL.Query().Get("path"))
	if err := h.collection.Remove(r.Context(), path); err != nil {
		Respond(r).WithError(w, statusFor(err), err)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

type sortRequest struct {
	Key string `json:"key"`
}

type sortKeys struct {
	Current   library.SortKey   `json:"current"`
	Available []library.SortKey `json:"available"`
}

func (h *CollectionHandler) getSort(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, sortKeys{Current: h.collection.State().SortKey, Available: library.SortKeys()})
}

func (h *CollectionHandler) setSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	key, err := library.ParseSortKey(req.Key)
	if err == nil {
		err = h.collection.SetSortKey(r.Context(), key)
	}
	if err != nil {
		Respond(r).WithError(w, statusFor(err), err)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

type filterRequest struct {
	Type   string `json:"type"`
	Camera string `json:"camera"`
}

func (h *CollectionHandler) setFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	f, err := library.ParseFilter(req.Type, req.Camera)
	if err != nil {
		Respond(r).WithError(w, statusFor(err), err)
		return
	}
	h.collection.SetFilter(r.Context(), f)
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *CollectionHandler) setSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	h.collection.SetSearchQuery(r.Context(), req.Query)
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

func (h *CollectionHandler) getSelection(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

type selectionRequest struct {
	Path string `json:"path"`
}

func (h *CollectionHandler) setSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeBody(r, &req); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.collection.Select(library.PhotoPath(req.Path)); err != nil {
		Respond(r).WithError(w, statusFor(err), err)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

func (h *CollectionHandler) move(f func() (library.PhotoPath, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := f(); err != nil {
			Respond(r).WithError(w, statusFor(err), err)
			return
		}
		Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
	}
}

func (h *CollectionHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, h.collection.State())
}

func (h *CollectionHandler) getCameras(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, simplePayload{Data: h.collection.Cameras(r.Context())})
}

func (h *CollectionHandler) getLocations(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, h.collection.Locations(r.Context()))
}

func (h *CollectionHandler) getTimeline(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, h.collection.Timeline(r.Context()))
}
