package quote

import (
	"sort"
	"strings"

	"pricequote/internal/currency"
	"pricequote/internal/provider"
)

// uniquePairs returns pairs without duplicates, in first-seen order.
func uniquePairs(pairs []currency.Pair) []currency.Pair {
	seen := make(map[currency.Pair]struct{}, len(pairs))
	out := make([]currency.Pair, 0, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// unionRequest crosses every source with every quote found in pairs.
// Sources and quotes are deduplicated independently, first-seen order.
func unionRequest(pairs []currency.Pair) provider.PriceRequest {
	var req provider.PriceRequest
	seenSrc := make(map[currency.Currency]struct{}, len(pairs))
	seenQuote := make(map[currency.Currency]struct{}, len(pairs))
	for _, p := range pairs {
		if _, ok := seenSrc[p.Source]; !ok {
			seenSrc[p.Source] = struct{}{}
			req.Sources = append(req.Sources, p.Source)
		}
		if _, ok := seenQuote[p.Quote]; !ok {
			seenQuote[p.Quote] = struct{}{}
			req.Quotes = append(req.Quotes, p.Quote)
		}
	}
	return req
}

// requestKey is a canonical identity for coalescing equal requests.
func requestKey(req provider.PriceRequest) string {
	codes := func(cs []currency.Currency) string {
		s := make([]string, 0, len(cs))
		for _, c := range cs {
			s = append(s, c.Code())
		}
		sort.Strings(s)
		return strings.Join(s, ",")
	}
	return codes(req.Sources) + "|" + codes(req.Quotes)
}
