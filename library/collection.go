package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bitbucket.org/kleinnic74/geosnap/logging"

	"go.uber.org/zap"
)

// Navigation tells whether the selection can move inside the display list
type Navigation struct {
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// Status summarizes the collection
type Status struct {
	Displayed int  `json:"displayed"`
	Total     int  `json:"total"`
	Filtered  bool `json:"filtered"`
}

// State is a snapshot of the collection sent to observers after each change
type State struct {
	Status     Status     `json:"status"`
	Navigation Navigation `json:"navigation"`
	Selected   PhotoPath  `json:"selected,omitempty"`
	// Position is the 1-based position of the selected photo in the display
	// list, 0 if nothing is selected or the selection is not displayed
	Position int     `json:"position,omitempty"`
	SortKey  SortKey `json:"sort"`
	Filter   string  `json:"filter,omitempty"`
	Query    string  `json:"query,omitempty"`
	// Seq increases with every change, observers may receive states out of
	// order and use it to ignore older ones
	Seq uint64 `json:"seq"`
}

// Entry is a line of the display list
type Entry struct {
	Position int       `json:"position"`
	Path     PhotoPath `json:"path"`
	Name     string    `json:"name"`
}

type Observer func(State)

// Collection keeps the photos added by the user (the master list), the
// optional filter and search query, and the list derived from them for
// display.
//
// The display list is always a subsequence of the master list in master
// order. The selection, if set, is always a photo of the master list; it
// may be hidden by the filter or search.
type Collection struct {
	lock sync.Mutex
	md   MetadataSource

	master   []PhotoPath
	known    map[PhotoPath]bool
	sortKey  SortKey
	seq      uint64
	filter   Filter
	query    string
	display  []PhotoPath
	selected PhotoPath

	observers []Observer
}

func NewCollection(md MetadataSource) *Collection {
	return &Collection{
		md:      md,
		known:   make(map[PhotoPath]bool),
		sortKey: SortByName,
	}
}

// Observe registers o to be called after each change of the collection.
// Observers are called without any lock held.
func (c *Collection) Observe(o Observer) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.observers = append(c.observers, o)
}

// update runs f with the lock held and notifies the observers if f reports a
// change
func (c *Collection) update(f func() bool) {
	c.lock.Lock()
	if !f() {
		c.lock.Unlock()
		return
	}
	c.seq++
	state := c.state()
	observers := append([]Observer(nil), c.observers...)
	c.lock.Unlock()
	for _, o := range observers {
		o(state)
	}
}

// AddPaths adds the paths not yet in the collection and returns how many
// were added
func (c *Collection) AddPaths(ctx context.Context, paths ...PhotoPath) int {
	return len(c.Add(ctx, paths...))
}

// Add works like AddPaths but returns the paths that were not yet in the
// collection, in the order given
func (c *Collection) Add(ctx context.Context, paths ...PhotoPath) []PhotoPath {
	log := logging.From(ctx).Named("collection")
	var newPaths []PhotoPath
	c.update(func() bool {
		for _, p := range paths {
			if p == "" || c.known[p] {
				continue
			}
			c.known[p] = true
			c.master = append(c.master, p)
			newPaths = append(newPaths, p)
		}
		if len(newPaths) == 0 {
			return false
		}
		sortPaths(ctx, c.master, c.sortKey, c.md)
		c.derive(ctx)
		if c.selected == "" && len(c.display) > 0 {
			c.selected = c.display[0]
		}
		return true
	})
	if len(newPaths) > 0 {
		log.Info("Photos added", zap.Int("count", len(newPaths)), zap.Array("paths", logging.Strings(pathsToStrings(newPaths))))
	}
	return newPaths
}

// Remove removes a photo and its cached metadata from the collection
func (c *Collection) Remove(ctx context.Context, path PhotoPath) (err error) {
	c.update(func() bool {
		if !c.known[path] {
			err = fmt.Errorf("%w: %s", ErrNotInCollection, path)
			return false
		}
		delete(c.known, path)
		c.master = removePath(c.master, path)
		c.md.Forget(path)
		if c.selected == path {
			c.selected = ""
		}
		c.derive(ctx)
		return true
	})
	if err == nil {
		logging.From(ctx).Named("collection").Info("Photo removed", zap.Stringer("path", path))
	}
	return
}

// SetSortKey sorts the collection. The selection is kept. On an empty
// collection this has no effect.
func (c *Collection) SetSortKey(ctx context.Context, key SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidSortKey, key)
	}
	c.update(func() bool {
		if len(c.master) == 0 {
			return false
		}
		c.sortKey = key
		sortPaths(ctx, c.master, key, c.md)
		c.derive(ctx)
		return true
	})
	return nil
}

// SetFilter replaces the current filter, a nil filter removes it. Setting a
// filter on an empty collection has no effect.
func (c *Collection) SetFilter(ctx context.Context, f Filter) {
	c.update(func() bool {
		if f != nil && len(c.master) == 0 {
			return false
		}
		c.filter = f
		c.derive(ctx)
		c.selectFirstIfHidden()
		return true
	})
}

// SetSearchQuery shows only the photos whose file name contains text,
// ignoring case. The search applies on top of the filter; an empty text
// removes the search only.
func (c *Collection) SetSearchQuery(ctx context.Context, text string) {
	c.update(func() bool {
		c.query = strings.ToLower(strings.TrimSpace(text))
		c.derive(ctx)
		c.selectFirstIfHidden()
		return true
	})
}

// Clear removes all photos, the filter, the search and the selection
func (c *Collection) Clear(ctx context.Context) {
	c.update(func() bool {
		c.md.Forget(c.master...)
		c.master = nil
		c.known = make(map[PhotoPath]bool)
		c.filter = nil
		c.query = ""
		c.display = nil
		c.selected = ""
		return true
	})
	logging.From(ctx).Named("collection").Info("Collection cleared")
}

// Select selects a displayed photo, the selection is left unchanged on error
func (c *Collection) Select(path PhotoPath) (err error) {
	c.update(func() bool {
		if !c.known[path] {
			err = fmt.Errorf("%w: %s", ErrNotInCollection, path)
			return false
		}
		if c.indexOf(path) < 0 {
			err = fmt.Errorf("%w: %s", ErrNotDisplayed, path)
			return false
		}
		c.selected = path
		return true
	})
	return
}

// Next selects the photo after the selected one in the display list
func (c *Collection) Next() (PhotoPath, error) {
	return c.move(1)
}

// Previous selects the photo before the selected one in the display list
func (c *Collection) Previous() (PhotoPath, error) {
	return c.move(-1)
}

// move returns the current selection unchanged when at the end of the list
func (c *Collection) move(delta int) (selected PhotoPath, err error) {
	c.update(func() bool {
		if c.selected == "" {
			err = ErrNoSelection
			return false
		}
		i := c.indexOf(c.selected)
		if i < 0 {
			err = fmt.Errorf("%w: %s", ErrNotDisplayed, c.selected)
			return false
		}
		selected = c.selected
		if i+delta < 0 || i+delta >= len(c.display) {
			return false
		}
		c.selected = c.display[i+delta]
		selected = c.selected
		return true
	})
	return
}

func (c *Collection) Selected() (PhotoPath, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.selected, c.selected != ""
}

func (c *Collection) Navigation() Navigation {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.navigation()
}

func (c *Collection) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status()
}

func (c *Collection) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state()
}

// Display returns the display list with 1-based positions
func (c *Collection) Display() []Entry {
	c.lock.Lock()
	defer c.lock.Unlock()
	entries := make([]Entry, len(c.display))
	for i, p := range c.display {
		entries[i] = Entry{Position: i + 1, Path: p, Name: p.Name()}
	}
	return entries
}

// Paths returns the master list
func (c *Collection) Paths() []PhotoPath {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]PhotoPath(nil), c.master...)
}

func (c *Collection) Contains(path PhotoPath) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.known[path]
}

// Membership is implemented by metadata sources bound to a collection
type Membership interface {
	Contains(path PhotoPath) bool
}

type collectionMetadata struct {
	MetadataSource
	c *Collection
}

func (m collectionMetadata) Contains(path PhotoPath) bool {
	return m.c.Contains(path)
}

// Metadata returns the metadata source of the collection. It implements
// Membership so that background work can skip photos removed meanwhile.
func (c *Collection) Metadata() MetadataSource {
	return collectionMetadata{MetadataSource: c.md, c: c}
}

// Cameras returns the distinct cameras of all photos in alphabetical order
func (c *Collection) Cameras(ctx context.Context) []string {
	paths := c.Paths()
	seen := make(map[string]bool)
	cameras := []string{}
	for _, p := range paths {
		camera := c.md.Tags(ctx, p).Camera()
		if camera == "" || seen[camera] {
			continue
		}
		seen[camera] = true
		cameras = append(cameras, camera)
	}
	sort.Strings(cameras)
	return cameras
}

func (c *Collection) derive(ctx context.Context) {
	display := make([]PhotoPath, 0, len(c.master))
	for _, p := range c.master {
		if c.filter != nil && !c.filter.Match(ctx, p, c.md) {
			continue
		}
		if c.query != "" && !strings.Contains(strings.ToLower(p.Name()), c.query) {
			continue
		}
		display = append(display, p)
	}
	c.display = display
}

func (c *Collection) selectFirstIfHidden() {
	if c.indexOf(c.selected) >= 0 || len(c.display) == 0 {
		return
	}
	c.selected = c.display[0]
}

func (c *Collection) indexOf(path PhotoPath) int {
	if path == "" {
		return -1
	}
	for i, p := range c.display {
		if p == path {
			return i
		}
	}
	return -1
}

func (c *Collection) navigation() Navigation {
	i := c.indexOf(c.selected)
	return Navigation{
		HasPrevious: i > 0,
		HasNext:     i >= 0 && i < len(c.display)-1,
	}
}

func (c *Collection) status() Status {
	return Status{
		Displayed: len(c.display),
		Total:     len(c.master),
		Filtered:  c.filter != nil || c.query != "",
	}
}

func (c *Collection) state() State {
	s := State{
		Status:     c.status(),
		Navigation: c.navigation(),
		Selected:   c.selected,
		Position:   c.indexOf(c.selected) + 1,
		SortKey:    c.sortKey,
		Query:      c.query,
		Seq:        c.seq,
	}
	if c.filter != nil {
		s.Filter = c.filter.Kind()
	}
	return s
}

func removePath(paths []PhotoPath, path PhotoPath) []PhotoPath {
	for i, p := range paths {
		if p == path {
			return append(paths[:i], paths[i+1:]...)
		}
	}
	return paths
}
