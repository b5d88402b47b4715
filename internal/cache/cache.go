package cache

import (
	"sort"
	"sync"
	"time"

	"pricequote/internal/currency"
)

// Entry is a cached price for one pair.
type Entry struct {
	Price float64
	// LastUpdated is the provider-reported time of the price, or the fetch
	// time when the provider did not report one.
	LastUpdated time.Time
	// FetchedAt is when the entry was written; expiry is measured from it.
	FetchedAt time.Time
	Provider  string
}

// State classifies a lookup.
type State int

const (
	Missing State = iota
	Stale
	Fresh
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "hit"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Store maps pairs to their last validated price. Expiry is evaluated lazily
// on read; nothing is removed in the background. When MaxItems is set,
// writes that grow the store past it drop expired entries first and then
// the oldest ones. Entries of the batch being written are never dropped, so
// a single large batch may leave the store above MaxItems.
type Store struct {
	ttl      time.Duration
	maxItems int

	mu    sync.RWMutex
	items map[currency.Pair]Entry
}

// New returns an empty Store. A ttl <= 0 makes every entry stale;
// maxItems <= 0 means unbounded.
func New(ttl time.Duration, maxItems int) *Store {
	return &Store{
		ttl:      ttl,
		maxItems: maxItems,
		items:    make(map[currency.Pair]Entry),
	}
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns the entry for p regardless of its age.
func (s *Store) Get(p currency.Pair) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.items[p]
	s.mu.RUnlock()
	return e, ok
}

// Lookup returns the entry for p and whether it is fresh at now.
func (s *Store) Lookup(p currency.Pair, now time.Time) (Entry, State) {
	e, ok := s.Get(p)
	if !ok {
		return Entry{}, Missing
	}
	if !s.fresh(e, now) {
		return e, Stale
	}
	return e, Fresh
}

func (s *Store) fresh(e Entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.FetchedAt) < s.ttl
}

// PutAll writes entries in a single critical section, overwriting any
// previous values for the same pairs.
func (s *Store) PutAll(entries map[currency.Pair]Entry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var now time.Time
	for p, e := range entries {
		s.items[p] = e
		if e.FetchedAt.After(now) {
			now = e.FetchedAt
		}
	}

	if s.maxItems > 0 && len(s.items) > s.maxItems {
		s.evict(now, entries)
	}
}

// evict must be called with mu held. Pairs in keep survive.
func (s *Store) evict(now time.Time, keep map[currency.Pair]Entry) {
	for p, e := range s.items {
		if len(s.items) <= s.maxItems {
			return
		}
		if _, ok := keep[p]; ok {
			continue
		}
		if !s.fresh(e, now) {
			delete(s.items, p)
		}
	}
	if len(s.items) <= s.maxItems {
		return
	}

	type aged struct {
		pair      currency.Pair
		fetchedAt time.Time
	}
	all := make([]aged, 0, len(s.items))
	for p, e := range s.items {
		if _, ok := keep[p]; !ok {
			all = append(all, aged{p, e.FetchedAt})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].fetchedAt.Before(all[j].fetchedAt) })
	for _, a := range all {
		if len(s.items) <= s.maxItems {
			break
		}
		delete(s.items, a.pair)
	}
}

// Len returns the number of entries, stale ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
