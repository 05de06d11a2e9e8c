// Package app wires the components of GeoSnap and serves them over HTTP
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/geosnap/config"
	"bitbucket.org/kleinnic74/geosnap/consts"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/events"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"bitbucket.org/kleinnic74/geosnap/geocoding/openstreetmap"
	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/library/boltstore"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"bitbucket.org/kleinnic74/geosnap/rest"
	"bitbucket.org/kleinnic74/geosnap/tasks"
	"bitbucket.org/kleinnic74/geosnap/watch"

	"github.com/gorilla/mux"
	"github.com/kleinnic74/fflags"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const dbName = "metadata.db"

type App struct {
	opts config.Options
	ctx  context.Context
	stop context.CancelFunc

	db         *bolt.DB
	store      *boltstore.BoltStore
	md         *library.MetadataStore
	collection *library.Collection
	bus        *events.Stream
	executor   tasks.TaskExecutor
	taskRepo   *tasks.TaskRepository
	geocache   *geocoding.Cache
	lookup     *geocoding.Lookup
	watcher    *watch.Watcher
	router     *mux.Router

	// last collection state forwarded by publishState
	selection struct {
		sync.Mutex
		path library.PhotoPath
		seq  uint64
	}

	addr string

	shutdownHandlers shutdownHandlers
}

type shutdownHandler func(context.Context, *App)

type shutdownHandlers struct {
	h []shutdownHandler
}

func (hdls *shutdownHandlers) Add(h shutdownHandler) {
	hdls.h = append(hdls.h, h)
}

func (hdls shutdownHandlers) Execute(ctx context.Context, a *App) {
	for i := len(hdls.h) - 1; i >= 0; i-- {
		hdls.h[i](ctx, a)
	}
}

// NewApp creates the application, addresses are resolved with Nominatim
func NewApp(ctx context.Context, o config.Options) (*App, error) {
	return newApp(ctx, o, openstreetmap.NewResolver(o.Language))
}

func newApp(ctx context.Context, o config.Options, resolver geocoding.Resolver) (a *App, err error) {
	logger, ctx := logging.SubFrom(ctx, "app")

	dataDir, err := filesystem.NewDataDir(o.LibDir)
	if err != nil {
		return nil, fmt.Errorf("Failed to create library directory: %w", err)
	}
	logger.Info("Library directory", zap.String("dir", string(dataDir)))

	a = &App{
		opts:     o,
		addr:     fmt.Sprintf(":%d", o.Port),
		taskRepo: tasks.NewTaskRepository(),
		router:   mux.NewRouter(),
		bus:      events.NewStream(),
	}
	a.ctx, a.stop = context.WithCancel(ctx)
	defer func() {
		if err != nil {
			a.shutdownHandlers.Execute(ctx, a)
		}
	}()

	a.db, err = bolt.Open(dataDir.Path(dbName), 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("Failed to initialize metadata store: %w", err)
	}
	a.shutdownHandlers.Add(func(ctx context.Context, a *App) {
		a.db.Close()
		logging.From(ctx).Info("Closed metadata store")
	})
	if a.store, err = boltstore.NewBoltStore(a.db); err != nil {
		return nil, fmt.Errorf("Failed to initialize metadata store: %w", err)
	}
	logger.Info("Opened metadata store", zap.Int("entries", a.store.Count()))

	a.md = library.NewMetadataStore(filesystem.Local, tags.NewExtractor(filesystem.Local), o.CacheSize).
		WithPersistentStore(a.store)
	a.collection = library.NewCollection(a.md)
	a.collection.Observe(a.publishState)

	a.executor = tasks.NewSerialTaskExecutor(a.collection.Metadata())
	tasks.RegisterTasks(a.taskRepo)
	registerPruneTask(a.taskRepo, a.store)

	if o.Geocoding {
		if err = fflags.IfEnabled(fflags.Define("geocoding"), func() error {
			a.geocache = geocoding.NewGeoCache(resolver)
			a.lookup = geocoding.NewLookup(a.geocache, a.publishAddress)
			rest.NewGeocacheHandler(a.geocache).InitRoutes(a.router)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("Failed to initialize geocoding: %w", err)
		}
	}

	if o.Watch {
		if err = fflags.IfEnabled(fflags.Define("watch"), func() error {
			var err error
			if a.watcher, err = watch.New(a.fileRemoved); err != nil {
				return err
			}
			a.shutdownHandlers.Add(func(ctx context.Context, a *App) {
				a.watcher.Close()
			})
			return nil
		}); err != nil {
			return nil, fmt.Errorf("Failed to initialize file watcher: %w", err)
		}
	}

	// REST Handlers

	rest.NewMetricsHandler().InitRoutes(a.router)
	if consts.IsDevMode() {
		rest.NewLogsHandler().InitRoutes(a.router)
		rest.NewDebugHandler().InitRoutes(a.router)
	}
	rest.NewSSEHandler(a.bus).InitRoutes(a.router)
	rest.NewCollectionHandler(a.collection, a.photosAdded).InitRoutes(a.router)
	rest.NewCacheHandler(a.md.CacheStats).InitRoutes(a.router)
	rest.NewTaskHandler(a.executor, a.taskRepo).InitRoutes(a.router)

	return a, nil
}

// Collection returns the photo collection of the application
func (a *App) Collection() *library.Collection {
	return a.collection
}

// Handler returns the HTTP interface with all middlewares
func (a *App) Handler() http.Handler {
	return rest.WithMiddleWares(a.router, "rest")
}

func (a *App) Run(ctx context.Context) {
	logger, ctx := logging.SubFrom(ctx, "app")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		logger, ctx := logging.SubFrom(ctx, "eventbus")
		a.bus.Dispatch(ctx)
		logger.Info("DONE")
		wg.Done()
	}()
	wg.Add(1)
	go func() {
		logger, ctx := logging.SubFrom(ctx, "tasks")
		a.executor.DrainTasks(ctx)
		logger.Info("DONE")
		wg.Done()
	}()
	if a.watcher != nil {
		wg.Add(1)
		go func() {
			logger, ctx := logging.SubFrom(ctx, "watch")
			a.watcher.Run(ctx)
			logger.Info("DONE")
			wg.Done()
		}()
	}
	wg.Add(1)
	go func() {
		a.addFolders(ctx, a.opts.Folders)
		wg.Done()
	}()

	server := http.Server{
		Addr:        a.addr,
		Handler:     a.Handler(),
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	wg.Add(1)
	go func() {
		logger, _ := logging.SubFrom(ctx, "http")
		logger.Info("Starting HTTP server...", zap.String("bindAddr", a.addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
		logger.Info("DONE")
		wg.Done()
	}()

	<-ctx.Done()

	logger.Info("Stopping...")

	ctxShutdown, cancelServerShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelServerShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	wg.Wait()
	a.Close(ctxShutdown)

	logger.Info("Terminated gracefully")
}

// Close stops pending lookups and releases the metadata store
func (a *App) Close(ctx context.Context) {
	a.stop()
	if a.lookup != nil {
		a.lookup.Cancel()
		a.lookup.Wait()
	}
	a.shutdownHandlers.Execute(ctx, a)
}

func (a *App) addFolders(ctx context.Context, folders []string) {
	log := logging.From(ctx).Named("startup")
	for _, dir := range folders {
		paths, err := library.ScanDir(ctx, dir, true)
		if err != nil {
			log.Warn("Cannot scan folder", zap.String("dir", dir), zap.Error(err))
			continue
		}
		if added := a.collection.Add(ctx, paths...); len(added) > 0 {
			a.photosAdded(ctx, added)
		}
	}
}
