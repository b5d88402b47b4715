package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"
)

// SimplePrice is the market data of one coin in one vs-currency.
type SimplePrice struct {
	Price       *float64
	MarketCap   *float64
	Volume24h   *float64
	Change24h   *float64 // percent, 2.5 = 2.5%
	LastUpdated *time.Time
}

// SimplePriceOptions selects the optional fields of GetSimplePrice.
type SimplePriceOptions struct {
	MarketCap   bool
	Volume24h   bool
	Change24h   bool
	LastUpdated bool
}

// GetSimplePrice returns prices keyed by coin id and then by lower-case
// vs-currency.
func (c *Client) GetSimplePrice(ctx context.Context, ids, vsCurrencies []string, include SimplePriceOptions, opts ...ClientOption) (map[string]map[string]SimplePrice, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	vs := make([]string, 0, len(vsCurrencies))
	for _, v := range vsCurrencies {
		vs = append(vs, strings.ToLower(v))
	}

	query := maps.Clone(override.query)
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.Join(vs, ","))
	if include.MarketCap {
		query.Set("include_market_cap", "true")
	}
	if include.Volume24h {
		query.Set("include_24hr_vol", "true")
	}
	if include.Change24h {
		query.Set("include_24hr_change", "true")
	}
	if include.LastUpdated {
		query.Set("include_last_updated_at", "true")
	}
	query.Set("precision", "full")

	url := fmt.Sprintf("%s/simple/price?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header
	req.Header.Set("Accept", "application/json")

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusBadRequest:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("bad request with ids=%s: %s", strings.Join(ids, ","), strings.TrimSpace(string(b)))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	// {
	//   "ecash": {
	//     "usd": 0.00003012,
	//     "usd_market_cap": 595123456.1,
	//     "usd_24h_vol": 11234567.8,
	//     "usd_24h_change": 2.51,
	//     "last_updated_at": 1717171717
	//   }
	// }
	var body map[string]map[string]*float64
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding simple price response: %w", err)
	}

	out := make(map[string]map[string]SimplePrice, len(body))
	for id, fields := range body {
		var lastUpdated *time.Time
		if ts := fields["last_updated_at"]; ts != nil && *ts > 0 {
			t := time.Unix(int64(*ts), 0).UTC()
			lastUpdated = &t
		}

		byVS := make(map[string]SimplePrice, len(vs))
		for _, v := range vs {
			price, ok := fields[v]
			if !ok {
				continue
			}
			byVS[v] = SimplePrice{
				Price:       price,
				MarketCap:   fields[v+"_market_cap"],
				Volume24h:   fields[v+"_24h_vol"],
				Change24h:   fields[v+"_24h_change"],
				LastUpdated: lastUpdated,
			}
		}
		out[id] = byVS
	}

	return out, nil
}
