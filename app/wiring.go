package app

import (
	"context"

	"bitbucket.org/kleinnic74/geosnap/events"
	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"bitbucket.org/kleinnic74/geosnap/library"
	"bitbucket.org/kleinnic74/geosnap/logging"
	"bitbucket.org/kleinnic74/geosnap/tasks"
	"go.uber.org/zap"
)

// publishState forwards collection changes to the event stream and starts
// the address lookup when the selection changed. States older than the last
// one forwarded are dropped, so the lookup always follows the latest
// selection.
func (a *App) publishState(state library.State) {
	a.selection.Lock()
	defer a.selection.Unlock()
	if state.Seq <= a.selection.seq {
		logging.From(a.ctx).Debug("Dropped outdated collection state", zap.Uint64("seq", state.Seq))
		return
	}
	a.selection.seq = state.Seq
	if !a.bus.Publish(events.Event{Type: events.CollectionChanged, Data: state}) {
		logging.From(a.ctx).Warn("Event queue full, dropped collection state")
	}
	if state.Status.Total == 0 && a.watcher != nil {
		a.watcher.Reset()
	}
	if a.selection.path != state.Selected {
		a.selection.path = state.Selected
		a.lookupAddress(state.Selected)
	}
}

func (a *App) lookupAddress(path library.PhotoPath) {
	if a.lookup == nil {
		return
	}
	if path == "" {
		a.lookup.Cancel()
		return
	}
	position := a.md.GPS(a.ctx, path)
	if position == nil {
		a.lookup.Cancel()
		return
	}
	a.lookup.Submit(a.ctx, string(path), *position)
}

func (a *App) publishAddress(r geocoding.Result) {
	a.bus.Publish(events.Event{Type: events.AddressResolved, Data: r})
}

// photosAdded warms the metadata caches and watches the new files
func (a *App) photosAdded(ctx context.Context, paths []library.PhotoPath) {
	if a.watcher != nil {
		files := make([]string, len(paths))
		for i, p := range paths {
			files[i] = string(p)
		}
		a.watcher.Add(ctx, files...)
	}
	if !a.opts.Prefetch {
		return
	}
	if _, err := a.executor.Submit(ctx, tasks.NewPrefetchTask(paths...)); err != nil {
		logging.From(ctx).Warn("Could not schedule prefetch", zap.Error(err))
	}
}

func (a *App) fileRemoved(ctx context.Context, path string) {
	p := library.PhotoPath(path)
	if !a.collection.Contains(p) {
		return
	}
	if err := a.collection.Remove(ctx, p); err == nil {
		a.bus.Publish(events.Event{Type: events.PhotoRemoved, Data: p})
	}
}
