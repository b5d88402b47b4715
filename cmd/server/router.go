package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"pricequote/internal/metrics"
	"pricequote/internal/quote"
)

const requestIDHeader = "X-Request-ID"

type api struct {
	engine         *quote.Engine
	logger         hclog.Logger
	metrics        *metrics.Metrics // nil disables instrumentation
	gatherer       prometheus.Gatherer
	maxPairs       int
	locale         language.Tag
	requestTimeout time.Duration
}

func (a *api) routes() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(a.instrument)

	router.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	if a.metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// flat routes: an /api subrouter reports 404 instead of 405 on method mismatch
	router.HandleFunc("/api/currencies", a.handleCurrencies).Methods(http.MethodGet)
	router.HandleFunc("/api/price", a.handlePrice).Methods(http.MethodGet)
	router.HandleFunc("/api/prices", a.handlePrices).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/api/stats", a.handleStats).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{a.logger}),
		handlers.PrintRecoveryStack(false),
	)

	return recovery(cors(handlers.CompressHandler(limitBody(router))))
}

// instrument tags every request with an id, logs it and records metrics
// under the route template.
func (a *api) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		a.logger.Debug("Request served",
			"request_id", id,
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
		if a.metrics != nil {
			a.metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			a.metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

type recoveryLogger struct{ hclog.Logger }

func (l recoveryLogger) Println(v ...any) {
	l.Error("Handler panicked", "panic", v)
}
