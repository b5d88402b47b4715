package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"

	"pricequote/internal/app"
	"pricequote/internal/config"
	"pricequote/internal/currency"
	"pricequote/internal/format"
	"pricequote/internal/provider"
)

func main() {
	var pairsCSV string
	var locale string
	var decimals float64
	var sign bool
	var withStats bool
	var period string
	var asJSON bool
	var timeout int
	var configPath string

	flag.StringVar(&pairsCSV, "pairs", getenv("PAIRS", "XEC:USD,BTC:USD"), "comma-separated SOURCE:QUOTE pairs")
	flag.StringVar(&locale, "locale", getenv("LOCALE", "en-US"), "BCP 47 locale used for formatting")
	flag.Float64Var(&decimals, "decimals", -1, "fixed fraction digits (negative picks automatically)")
	flag.BoolVar(&sign, "sign", false, "always show the sign")
	flag.BoolVar(&withStats, "stats", false, "also print statistics for each pair")
	flag.StringVar(&period, "period", "24h", "statistics period (24h, 7d, 30d)")
	flag.BoolVar(&asJSON, "json", false, "print results as JSON")
	flag.IntVar(&timeout, "timeout", 15, "overall timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("config: %v", err)
	}
	logger := app.NewLogger("pricequote-fetch", cfg.Log)

	pairs, err := parsePairs(pairsCSV)
	if err != nil {
		fatal("%v", err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		fatal("invalid locale %q: %v", locale, err)
	}
	per, err := provider.ParsePeriod(period)
	if err != nil {
		fatal("%v", err)
	}

	providers, err := app.NewProviders(cfg, logger)
	if err != nil {
		fatal("providers: %v", err)
	}
	engine := app.NewEngine(cfg.Engine, providers, logger, nil)
	f := format.New(engine, tag)

	var opts format.Options
	if decimals >= 0 {
		opts.Decimals = format.Decimals(format.FloorDecimals(decimals))
	}
	opts.AlwaysShowSign = sign

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	prices, err := f.Prices(ctx, pairs, opts)
	if err != nil {
		fatal("fetch: %v", err)
	}

	var stats []*format.FormattedStats
	if withStats {
		seen := make(map[currency.Pair]bool, len(pairs))
		for _, p := range pairs {
			if seen[p] {
				continue
			}
			seen[p] = true
			s, err := f.Stats(ctx, p, per)
			if err != nil {
				fatal("stats %s: %v", p, err)
			}
			if s == nil {
				logger.Warn("No statistics", "pair", p.String(), "period", per.String())
				continue
			}
			stats = append(stats, s)
		}
	}

	if asJSON {
		out := struct {
			Prices []format.Formatted       `json:"prices"`
			Stats  []*format.FormattedStats `json:"stats,omitempty"`
		}{Prices: prices, Stats: stats}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}

	for _, p := range prices {
		text := p.Text
		if !p.Found {
			text = "n/a"
		}
		fmt.Printf("%-12s %s\n", p.Pair, text)
	}
	for _, s := range stats {
		fmt.Printf("\n%s (%s)\n", s.Pair, s.Period)
		fmt.Printf("  price       %s\n", s.Price)
		fmt.Printf("  market cap  %s\n", s.MarketCap)
		fmt.Printf("  volume      %s\n", s.Volume)
		fmt.Printf("  change      %s (%s)\n", s.Change, s.ChangePercent)
	}
}

func parsePairs(csv string) ([]currency.Pair, error) {
	var pairs []currency.Pair
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		p, err := currency.ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs provided")
	}
	return pairs, nil
}

func fatal(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "pricequote-fetch: "+msg+"\n", args...)
	os.Exit(1)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
