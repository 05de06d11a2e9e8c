package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bitbucket.org/kleinnic74/geosnap/cache"
	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/events"
	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/tasks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler(t *testing.T) {
	repo := tasks.NewTaskRepository()
	tasks.RegisterTasks(repo)
	md := library.NewMetadataStore(nil, nil, 1)
	router := mux.NewRouter()
	NewTaskHandler(tasks.NewInlineExecutor(md), repo).InitRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/taskdefinitions", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	var defined struct {
		Data []tasks.TaskDefinition `json:"data"`
	}
	decode(t, rr, &defined)
	require.Len(t, defined.Data, 1)
	assert.Equal(t, tasks.PrefetchTaskType, defined.Data[0].Name)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"type":"prefetch","parameters":{"paths":[]}}`)))
	checkResponseCode(t, http.StatusAccepted, rr.Code)
	var execution tasks.Execution
	decode(t, rr, &execution)
	assert.Equal(t, tasks.Completed, execution.Status)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"type":"import"}`)))
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	var listed struct {
		Data []tasks.Execution `json:"data"`
	}
	decode(t, rr, &listed)
	assert.Len(t, listed.Data, 1)
}

func TestCacheHandler(t *testing.T) {
	md := library.NewMetadataStore(nil, nil, 7)
	router := mux.NewRouter()
	NewCacheHandler(md.CacheStats).InitRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/caches", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	var stats struct {
		Data []cache.Stats `json:"data"`
	}
	decode(t, rr, &stats)
	require.Len(t, stats.Data, 2)
	assert.Equal(t, "tags", stats.Data[0].Name)
	assert.Equal(t, 7, stats.Data[1].Capacity)
}

func TestGeocacheHandler(t *testing.T) {
	cache := geocoding.NewGeoCache(geocoding.ResolverFunc(func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
		return nil, false, nil
	}))
	router := mux.NewRouter()
	NewGeocacheHandler(cache).InitRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/geocache", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	var stats geocoding.Stats
	decode(t, rr, &stats)
	assert.Equal(t, geocoding.Stats{}, stats)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/geocache?format=svg", nil))
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")
}

func TestEventStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := events.NewStream()
	go stream.Dispatch(ctx)
	router := mux.NewRouter()
	NewSSEHandler(stream).InitRoutes(router)
	server := httptest.NewServer(WithMiddleWares(router, "test"))
	defer server.Close()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/eventstream", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to connect to event stream: %s", err)
	}
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	// wait for the handshake so that the listener is about to register
	assert.Equal(t, ": connected", <-lines)
	<-lines

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stream.Publish(events.Event{Type: events.AddressResolved, Data: "Wien"})
		case line := <-lines:
			if !strings.HasPrefix(line, "data: ") {
				if line != "" {
					assert.Equal(t, "event: address", line)
				}
				continue
			}
			var e events.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
			assert.Equal(t, events.Event{Type: events.AddressResolved, Data: "Wien"}, e)
			return
		case <-deadline:
			t.Fatal("No event received")
		}
	}
}

func TestMiddlewaresAddRequestID(t *testing.T) {
	router := mux.NewRouter()
	NewMetricsHandler().InitRoutes(router)
	handler := WithMiddleWares(router, "test")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "fixed", rr.Header().Get("X-Request-ID"))
}

func TestDebugRoutesListsEndpoints(t *testing.T) {
	router := mux.NewRouter()
	NewTaskHandler(tasks.NewInlineExecutor(nil), tasks.NewTaskRepository()).InitRoutes(router)
	NewDebugHandler().InitRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/routes", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/taskdefinitions")
	assert.Contains(t, rr.Body.String(), "/debug/pprof/heap")
}
