package geocoding

import (
	"context"
	"sync"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is the outcome of a Lookup request
type Result struct {
	RequestID string       `json:"id"`
	Path      string       `json:"path"`
	Address   *gps.Address `json:"address,omitempty"`
	Found     bool         `json:"found"`
	Err       error        `json:"-"`
}

// Lookup resolves the address of the currently selected photo. Only the
// latest submitted request is delivered, earlier ones are cancelled and
// their results dropped.
type Lookup struct {
	resolver Resolver
	deliver  func(Result)

	lock    sync.Mutex
	current string
	cancel  context.CancelFunc

	delivery sync.Mutex
	wg       sync.WaitGroup
}

func NewLookup(r Resolver, deliver func(Result)) *Lookup {
	return &Lookup{resolver: r, deliver: deliver}
}

// Submit starts resolving the given position on behalf of path and returns
// the id of the request
func (l *Lookup) Submit(ctx context.Context, path string, position gps.Record) string {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(ctx)
	l.lock.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.current, l.cancel = id, cancel
	l.lock.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		log, ctx := logging.FromWithNameAndFields(ctx, "lookup", zap.String("requestID", id), zap.String("path", path))
		address, found, err := l.resolver.ReverseGeocode(ctx, position.Latitude, position.Longitude)
		l.delivery.Lock()
		defer l.delivery.Unlock()
		if !l.isCurrent(id) {
			log.Debug("Dropping stale lookup result")
			return
		}
		if err != nil {
			log.Warn("Reverse geocoding failed", zap.Error(err))
		}
		l.deliver(Result{RequestID: id, Path: path, Address: address, Found: found && err == nil, Err: err})
	}()
	return id
}

// Cancel aborts the pending request, if any
func (l *Lookup) Cancel() {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.current = ""
}

// Wait blocks until all started requests have terminated
func (l *Lookup) Wait() {
	l.wg.Wait()
}

func (l *Lookup) isCurrent(id string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.current == id
}
