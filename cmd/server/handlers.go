package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"pricequote/internal/currency"
	"pricequote/internal/format"
	"pricequote/internal/provider"
	"pricequote/internal/quote"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status     string   `json:"status"`
	Strategy   string   `json:"strategy"`
	Providers  []string `json:"providers"`
	CacheItems int      `json:"cache_items"`
}

type currencyInfo struct {
	Code string `json:"code"`
	currency.Meta
}

type currenciesResponse struct {
	Currencies []currencyInfo `json:"currencies"`
}

type priceResult struct {
	Pair  string   `json:"pair"`
	Found bool     `json:"found"`
	Price *float64 `json:"price,omitempty"`
	Text  string   `json:"text,omitempty"`
}

type pricesResponse struct {
	Prices []priceResult `json:"prices"`
}

type pricesBody struct {
	Pairs []string `json:"pairs"`
}

type statsResponse struct {
	Stats     *provider.Statistics   `json:"stats"`
	Formatted *format.FormattedStats `json:"formatted"`
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		Strategy:   a.engine.Strategy().String(),
		Providers:  a.engine.Providers(),
		CacheItems: a.engine.CacheLen(),
	})
}

func (a *api) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	all := currency.ListAll()
	out := currenciesResponse{Currencies: make([]currencyInfo, 0, len(all))}
	for _, c := range all {
		m, _ := currency.MetaOf(c)
		out.Currencies = append(out.Currencies, currencyInfo{Code: c.Code(), Meta: m})
	}
	a.writeJSON(w, r, http.StatusOK, out)
}

func (a *api) handlePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pair, err := pairFromQuery(q.Get("source"), q.Get("quote"))
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	tag, opts, err := a.formatParams(r)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := a.withTimeout(r.Context())
	defer cancel()

	price, found, err := a.engine.Current(ctx, pair)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	res := priceResult{Pair: pair.String(), Found: found}
	if !found {
		a.writeJSON(w, r, http.StatusNotFound, res)
		return
	}
	res.Price = &price
	res.Text = format.Number(tag, price, pair.Quote, opts)
	a.writeJSON(w, r, http.StatusOK, res)
}

func (a *api) handlePrices(w http.ResponseWriter, r *http.Request) {
	var raw []string
	switch r.Method {
	case http.MethodPost:
		var b pricesBody
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			a.writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
			return
		}
		raw = b.Pairs
	default:
		raw = splitCSV(r.URL.Query().Get("pairs"))
	}

	if len(raw) == 0 {
		a.writeError(w, r, http.StatusBadRequest, errors.New("pairs cannot be empty"))
		return
	}
	if len(raw) > a.maxPairs {
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("too many pairs (max %d)", a.maxPairs))
		return
	}

	pairs := make([]currency.Pair, 0, len(raw))
	for _, s := range raw {
		p, err := currency.ParsePair(s)
		if err != nil {
			a.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		pairs = append(pairs, p)
	}

	tag, opts, err := a.formatParams(r)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := a.withTimeout(r.Context())
	defer cancel()

	lookups, err := a.engine.CurrentPairs(ctx, pairs)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	out := pricesResponse{Prices: make([]priceResult, 0, len(lookups))}
	for _, l := range lookups {
		res := priceResult{Pair: l.Pair.String(), Found: l.Found}
		if l.Found {
			price := l.Price
			res.Price = &price
			res.Text = format.Number(tag, price, l.Pair.Quote, opts)
		}
		out.Prices = append(out.Prices, res)
	}
	a.writeJSON(w, r, http.StatusOK, out)
}

func (a *api) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pair, err := pairFromQuery(q.Get("source"), q.Get("quote"))
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	period, err := provider.ParsePeriod(q.Get("period"))
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	tag, _, err := a.formatParams(r)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := a.withTimeout(r.Context())
	defer cancel()

	stats, err := a.engine.Stats(ctx, pair, period)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	if stats == nil {
		a.writeError(w, r, http.StatusNotFound, fmt.Errorf("no statistics for %s over %s", pair, period))
		return
	}
	a.writeJSON(w, r, http.StatusOK, statsResponse{
		Stats:     stats,
		Formatted: format.Stats(tag, pair, period, stats),
	})
}

func (a *api) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.requestTimeout > 0 {
		return context.WithTimeout(ctx, a.requestTimeout)
	}
	return context.WithCancel(ctx)
}

// formatParams reads locale, decimals and sign.
func (a *api) formatParams(r *http.Request) (language.Tag, format.Options, error) {
	q := r.URL.Query()
	tag := a.locale
	if s := q.Get("locale"); s != "" {
		t, err := language.Parse(s)
		if err != nil {
			return tag, format.Options{}, fmt.Errorf("invalid locale %q", s)
		}
		tag = t
	}

	var opts format.Options
	if s := q.Get("decimals"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return tag, opts, fmt.Errorf("invalid decimals %q", s)
		}
		opts.Decimals = format.Decimals(format.FloorDecimals(v))
	}
	if s := q.Get("sign"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return tag, opts, fmt.Errorf("invalid sign %q", s)
		}
		opts.AlwaysShowSign = v
	}
	return tag, opts, nil
}

func pairFromQuery(source, quote string) (currency.Pair, error) {
	p := currency.NewPair(source, quote)
	if p.Source.IsZero() || p.Quote.IsZero() {
		return currency.Pair{}, errors.New("source and quote are required")
	}
	return p, nil
}

func (a *api) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quote.ErrUnsupportedStrategy):
		a.writeError(w, r, http.StatusNotImplemented, err)
	case errors.Is(err, context.DeadlineExceeded):
		a.writeError(w, r, http.StatusGatewayTimeout, err)
	case errors.Is(err, context.Canceled):
		// client went away
		a.writeError(w, r, 499, err)
	default:
		a.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func (a *api) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	a.logger.Info("Request failed", "url", r.URL.String(), "status", status, "err", err)
	a.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func (a *api) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		a.logger.Error("Write response failed", "url", r.URL.String(), "status", status, "err", err)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
