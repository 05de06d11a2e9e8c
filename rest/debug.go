package rest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
)

// DebugHandler lists the registered routes and exposes pprof, only mounted in dev mode
type DebugHandler struct{}

func NewDebugHandler() DebugHandler {
	return DebugHandler{}
}

func (d DebugHandler) InitRoutes(router *mux.Router) {
	router.HandleFunc("/debug/routes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "<html><head><title>Endpoints</title></head><body>")
		router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			t, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, _ := route.GetMethods()
			fmt.Fprintf(w, "<div>%v <a href=\"%s\">%s</a></div>\n", methods, html.EscapeString(t), html.EscapeString(t))
			return nil
		})
		fmt.Fprintln(w, "</body></html>")
	}).Methods("GET").Name("debug.routes")

	router.HandleFunc("/debug/pprof/", pprof.Index).Methods("GET")
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	for _, p := range []string{"goroutine", "threadcreate", "heap", "allocs", "block", "mutex"} {
		router.Handle("/debug/pprof/"+p, pprof.Handler(p))
	}
}
