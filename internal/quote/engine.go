package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"pricequote/internal/cache"
	"pricequote/internal/currency"
	"pricequote/internal/metrics"
	"pricequote/internal/provider"
)

// DefaultTTL is used when no TTL option is given.
const DefaultTTL = time.Minute

// Engine fetches prices from an ordered list of providers, caches validated
// results for a TTL and serves reads from the cache.
// It is safe for concurrent use.
type Engine struct {
	providers       []provider.Provider
	strategy        Strategy
	ttl             time.Duration
	maxItems        int
	providerTimeout time.Duration
	coalesce        bool

	store   *cache.Store
	logger  hclog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	group   singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy sets the provider strategy. Unsupported values are accepted
// here and rejected when an operation runs.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithTTL sets the cache time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithCacheMaxItems bounds the cache size. Zero means unbounded.
func WithCacheMaxItems(n int) Option {
	return func(e *Engine) { e.maxItems = n }
}

// WithProviderTimeout bounds every single provider call. Zero means no
// timeout beyond the caller's context.
func WithProviderTimeout(d time.Duration) Option {
	return func(e *Engine) { e.providerTimeout = d }
}

// WithCoalescing makes concurrent Fetch calls for the same request share a
// single upstream round-trip. Off by default. The shared call is detached
// from the caller that started it, so one caller giving up does not fail the
// others; each caller still returns early when its own context ends. Pair it
// with WithProviderTimeout to bound the shared call.
func WithCoalescing(on bool) Option {
	return func(e *Engine) { e.coalesce = on }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used for cache timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine over providers, consulted in the given order.
func New(providers []provider.Provider, opts ...Option) *Engine {
	e := &Engine{
		providers: append([]provider.Provider(nil), providers...),
		strategy:  Fallback,
		ttl:       DefaultTTL,
		logger:    hclog.NewNullLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.store = cache.New(e.ttl, e.maxItems)
	return e
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// TTL returns the cache time-to-live.
func (e *Engine) TTL() time.Duration { return e.ttl }

// Providers returns provider names in consultation order.
func (e *Engine) Providers() []string {
	out := make([]string, 0, len(e.providers))
	for _, p := range e.providers {
		out = append(out, p.Name())
	}
	return out
}

// CacheLen returns the number of cached pairs, stale ones included.
func (e *Engine) CacheLen() int { return e.store.Len() }

// Fetch asks providers, in order, for every pair of req and caches the first
// response that answers all of them. It reports whether any provider
// succeeded; total failure is not an error.
func (e *Engine) Fetch(ctx context.Context, req provider.PriceRequest) (bool, error) {
	if err := e.strategy.validate(); err != nil {
		return false, err
	}
	return e.fetch(ctx, req)
}

func (e *Engine) fetch(ctx context.Context, req provider.PriceRequest) (bool, error) {
	if len(req.Sources) == 0 || len(req.Quotes) == 0 {
		return false, ErrEmptyRequest
	}
	if !e.coalesce {
		return e.fetchFallback(ctx, req)
	}

	key := requestKey(req)
	detached := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (any, error) {
		return e.fetchFallback(detached, req)
	})

	select {
	case <-ctx.Done():
		e.logger.Debug("Left in-flight fetch", "request", key, "err", ctx.Err())
		return false, ctx.Err()
	case res := <-ch:
		if res.Shared {
			e.logger.Debug("Joined in-flight fetch", "request", key)
		}
		ok, _ := res.Val.(bool)
		return ok, res.Err
	}
}

func (e *Engine) fetchFallback(ctx context.Context, req provider.PriceRequest) (bool, error) {
	pairs := req.Pairs()

	for _, p := range e.providers {
		if err := ctx.Err(); err != nil {
			e.countFetch("canceled")
			return false, err
		}

		resp, err := e.callFetchPrices(ctx, p, req)
		if err != nil {
			e.countProvider(p.Name(), "fetch_prices", "error")
			e.logger.Debug("Provider fetch failed", "provider", p.Name(), "pairs", len(pairs), "err", err)
			continue
		}

		entries, err := e.validate(p.Name(), pairs, resp)
		if err != nil {
			e.countProvider(p.Name(), "fetch_prices", "invalid")
			e.logger.Debug("Provider response rejected", "provider", p.Name(), "err", err)
			continue
		}

		e.countProvider(p.Name(), "fetch_prices", "ok")
		e.store.PutAll(entries)
		e.countFetch("success")
		e.logger.Debug("Fetched prices", "provider", p.Name(), "pairs", len(entries))
		return true, nil
	}

	if err := ctx.Err(); err != nil {
		e.countFetch("canceled")
		return false, err
	}

	e.countFetch("failure")
	e.logger.Warn("All providers failed", "providers", len(e.providers), "sources", len(req.Sources), "quotes", len(req.Quotes))
	return false, nil
}

// validate accepts a response only if every requested pair has exactly one
// matching, error-free point with a price. Points outside the request are
// ignored.
func (e *Engine) validate(name string, pairs []currency.Pair, resp provider.PriceResponse) (map[currency.Pair]cache.Entry, error) {
	now := e.now()

	wanted := make(map[currency.Pair]struct{}, len(pairs))
	for _, p := range pairs {
		wanted[p] = struct{}{}
	}

	entries := make(map[currency.Pair]cache.Entry, len(pairs))
	for _, pt := range resp.Prices {
		key := pt.Pair()
		if _, ok := wanted[key]; !ok {
			continue
		}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("%w: duplicate point for %s", ErrInvalidResponse, key)
		}
		if pt.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidResponse, key, pt.Error)
		}
		if !pt.Valid() {
			return nil, fmt.Errorf("%w: no price for %s", ErrInvalidResponse, key)
		}

		lastUpdated := pt.LastUpdated
		if lastUpdated.IsZero() {
			lastUpdated = now
		}
		entries[key] = cache.Entry{
			Price:       *pt.Price,
			LastUpdated: lastUpdated,
			FetchedAt:   now,
			Provider:    name,
		}
	}

	for _, p := range pairs {
		if _, ok := entries[p]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidResponse, p)
		}
	}
	return entries, nil
}

// Current returns the price of pair, fetching it when the cached value is
// missing or expired. found is false when no provider could supply it.
func (e *Engine) Current(ctx context.Context, pair currency.Pair) (price float64, found bool, err error) {
	if err := e.strategy.validate(); err != nil {
		return 0, false, err
	}

	if entry, state := e.lookup(pair, e.now()); state == cache.Fresh {
		return entry.Price, true, nil
	}

	req := provider.PriceRequest{
		Sources: []currency.Currency{pair.Source},
		Quotes:  []currency.Currency{pair.Quote},
	}
	if _, err := e.fetch(ctx, req); err != nil {
		return 0, false, err
	}

	entry, ok := e.store.Get(pair)
	if !ok {
		return 0, false, nil
	}
	return entry.Price, true, nil
}

// Lookup is one result of CurrentPairs.
type Lookup struct {
	Pair  currency.Pair `json:"pair"`
	Price float64       `json:"price"`
	Found bool          `json:"found"`
}

// CurrentPairs resolves every pair, in input order. If any pair is missing or
// expired, a single fetch refreshes the union of all requested sources and
// quotes. Repeated pairs resolve to the same value.
func (e *Engine) CurrentPairs(ctx context.Context, pairs []currency.Pair) ([]Lookup, error) {
	if err := e.strategy.validate(); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return []Lookup{}, nil
	}

	unique := uniquePairs(pairs)

	now := e.now()
	dirty := 0
	for _, p := range unique {
		if _, state := e.lookup(p, now); state != cache.Fresh {
			dirty++
		}
	}

	if dirty > 0 {
		req := unionRequest(unique)
		e.logger.Debug("Refreshing pairs", "dirty", dirty, "unique", len(unique), "sources", len(req.Sources), "quotes", len(req.Quotes))
		if _, err := e.fetch(ctx, req); err != nil {
			return nil, err
		}
	}

	resolved := make(map[currency.Pair]Lookup, len(unique))
	for _, p := range unique {
		l := Lookup{Pair: p}
		if entry, ok := e.store.Get(p); ok {
			l.Price, l.Found = entry.Price, true
		}
		resolved[p] = l
	}

	out := make([]Lookup, len(pairs))
	for i, p := range pairs {
		out[i] = resolved[p]
	}
	return out, nil
}

// Stats returns the first statistics any provider can supply for pair.
// Results are never cached. It returns nil, nil when every provider fails.
func (e *Engine) Stats(ctx context.Context, pair currency.Pair, period provider.Period) (*provider.Statistics, error) {
	if err := e.strategy.validate(); err != nil {
		return nil, err
	}

	for _, p := range e.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats, err := e.callGetStatistics(ctx, p, pair, period)
		if err != nil {
			e.logger.Debug("Provider statistics failed", "provider", p.Name(), "pair", pair.String(), "err", err)
			continue
		}
		if stats == nil {
			e.logger.Debug("Provider has no statistics", "provider", p.Name(), "pair", pair.String(), "period", period.String())
			continue
		}
		return stats, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Warn("No provider returned statistics", "pair", pair.String(), "period", period.String())
	return nil, nil
}

func (e *Engine) lookup(p currency.Pair, now time.Time) (cache.Entry, cache.State) {
	entry, state := e.store.Lookup(p, now)
	if e.metrics != nil {
		e.metrics.CacheLookupsTotal.WithLabelValues(state.String()).Inc()
	}
	return entry, state
}

func (e *Engine) callFetchPrices(ctx context.Context, p provider.Provider, req provider.PriceRequest) (provider.PriceResponse, error) {
	ctx, cancel := e.providerContext(ctx)
	defer cancel()

	start := time.Now()
	resp, err := p.FetchPrices(ctx, req)
	e.observe(p.Name(), "fetch_prices", start)
	return resp, err
}

func (e *Engine) callGetStatistics(ctx context.Context, p provider.Provider, pair currency.Pair, period provider.Period) (*provider.Statistics, error) {
	ctx, cancel := e.providerContext(ctx)
	defer cancel()

	start := time.Now()
	stats, err := p.GetStatistics(ctx, pair, period)
	e.observe(p.Name(), "get_statistics", start)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.countProvider(p.Name(), "get_statistics", outcome)
	return stats, err
}

func (e *Engine) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.providerTimeout > 0 {
		return context.WithTimeout(ctx, e.providerTimeout)
	}
	return ctx, func() {}
}

func (e *Engine) observe(name, op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ProviderRequestDuration.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
	}
}

func (e *Engine) countProvider(name, op, outcome string) {
	if e.metrics != nil {
		e.metrics.ProviderRequestsTotal.WithLabelValues(name, op, outcome).Inc()
	}
}

func (e *Engine) countFetch(result string) {
	if e.metrics != nil {
		e.metrics.FetchTotal.WithLabelValues(result).Inc()
	}
}
