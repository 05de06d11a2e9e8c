package geocoding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type results struct {
	lock sync.Mutex
	all  []Result
}

func (r *results) add(res Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.all = append(r.all, res)
}

func TestLookupLastRequestWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	slow := ResolverFunc(func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
		started <- struct{}{}
		if lat == 1 {
			// first request blocks until superseded
			select {
			case <-ctx.Done():
			case <-release:
			}
		}
		a := gps.AsAddress("Austria", "at", "Wien", "1010")
		return &a, true, nil
	})
	var got results
	lookup := NewLookup(slow, got.add)

	lookup.Submit(context.Background(), "/a.jpg", gps.Record{Latitude: 1, Longitude: 1})
	<-started
	second := lookup.Submit(context.Background(), "/b.jpg", gps.Record{Latitude: 2, Longitude: 2})
	<-started
	close(release)
	lookup.Wait()

	require.Len(t, got.all, 1)
	assert.Equal(t, second, got.all[0].RequestID)
	assert.Equal(t, "/b.jpg", got.all[0].Path)
	assert.True(t, got.all[0].Found)
	assert.Equal(t, "Wien", got.all[0].Address.City)
}

func TestLookupSubmitCancelsPrevious(t *testing.T) {
	cancelled := make(chan error, 1)
	resolver := ResolverFunc(func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
		if lat == 1 {
			<-ctx.Done()
			cancelled <- ctx.Err()
			return nil, false, ctx.Err()
		}
		return nil, false, nil
	})
	var got results
	lookup := NewLookup(resolver, got.add)
	lookup.Submit(context.Background(), "/a.jpg", gps.Record{Latitude: 1})
	lookup.Submit(context.Background(), "/b.jpg", gps.Record{Latitude: 2})
	assert.ErrorIs(t, <-cancelled, context.Canceled)
	lookup.Wait()
	require.Len(t, got.all, 1)
	assert.Equal(t, "/b.jpg", got.all[0].Path)
	assert.False(t, got.all[0].Found)
}

func TestLookupCancel(t *testing.T) {
	resolver := ResolverFunc(func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
		<-ctx.Done()
		return nil, false, ctx.Err()
	})
	var got results
	lookup := NewLookup(resolver, got.add)
	lookup.Submit(context.Background(), "/a.jpg", gps.Record{})
	lookup.Cancel()
	lookup.Wait()
	assert.Empty(t, got.all)
}

func TestLookupReportsErrors(t *testing.T) {
	failure := errors.New("Service unavailable")
	resolver := ResolverFunc(func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
		return nil, false, failure
	})
	var got results
	lookup := NewLookup(resolver, got.add)
	lookup.Submit(context.Background(), "/a.jpg", gps.Record{})
	lookup.Wait()
	require.Len(t, got.all, 1)
	assert.ErrorIs(t, got.all[0].Err, failure)
	assert.False(t, got.all[0].Found)
}
