package rest

import (
	"net/http"

	"bitbucket.org/kleinnic74/geosnap/logging"
	"github.com/gorilla/mux"
)

type logsHandler struct{}

func NewLogsHandler() logsHandler {
	return logsHandler{}
}

func (l logsHandler) InitRoutes(r *mux.Router) {
	r.Handle("/logs", l).Methods("GET")
}

// ServeHTTP writes the most recent log lines, newest first unless ?order=asc
func (l logsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	logging.Dump(w, r.URL.Query().Get("order") != "asc")
}
