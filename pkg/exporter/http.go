package exporter

import (
	"math/rand"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/billing"
)

type RouterConfig struct {
	// Credentials protect the root endpoint.
	Credentials Credentials
	// ScrapeOnRequest runs a cycle before serving /metrics.
	ScrapeOnRequest bool
	// Help is the text served on /help.
	Help string
}

type server struct {
	logger   log.FieldLogger
	logIDs   *logIDSource
	runner   Runner
	gatherer prometheus.Gatherer
	cfg      RouterConfig
}

type statusResponse struct {
	Status string `json:"status"`
}

// NewRouter builds the HTTP API. HTTP metrics are registered on registry,
// and /metrics serves everything registry gathers.
func NewRouter(logger log.FieldLogger, rand *rand.Rand, runner Runner, registry *prometheus.Registry, cfg RouterConfig) (chi.Router, error) {
	logger = logger.WithField("component", "api")
	metrics := newHTTPMetrics()
	if err := registerAll(registry, metrics.collectors()...); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: &requestLogger{logger}}))
	router.Use(middleware.Recoverer)

	srv := &server{
		logger:   logger,
		logIDs:   &logIDSource{rnd: rand},
		runner:   runner,
		gatherer: registry,
		cfg:      cfg,
	}

	router.Group(func(r chi.Router) {
		r.Use(basicAuth(logger, "atlas-billing-exporter", cfg.Credentials))
		r.Method(http.MethodGet, "/", metrics.instrument("root", srv.rootHandler))
	})
	router.Method(http.MethodGet, "/health", metrics.instrument("health", srv.healthHandler))
	router.Method(http.MethodGet, "/help", metrics.instrument("help", srv.helpHandler))
	router.Method(http.MethodGet, "/metrics", metrics.instrument("metrics", srv.metricsHandler))
	router.NotFound(srv.notFoundHandler)

	return router, nil
}

func (srv *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeResponseAsJSON(srv.logger, w, http.StatusOK, statusResponse{Status: "ok"})
}

func (srv *server) helpHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(srv.cfg.Help)); err != nil {
		srv.logger.WithError(err).Error("failed writing HTTP response")
	}
}

func (srv *server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(srv.logger, w, http.StatusNotFound, "not found")
}

func (srv *server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	logger := srv.logIDs.requestLogger(srv.logger, r)
	if srv.cfg.ScrapeOnRequest {
		if _, err := srv.runner.Run(r.Context()); err != nil {
			// a stale snapshot must not be scraped as fresh samples
			srv.writeCycleError(logger, w, err)
			return
		}
	}
	promhttp.HandlerFor(srv.gatherer, promhttp.HandlerOpts{
		ErrorLog:      logger,
		ErrorHandling: promhttp.ContinueOnError,
	}).ServeHTTP(w, r)
}

// writeCycleError reports a failed fetch and aggregate cycle as a bad gateway
// carrying the failure kind.
func (srv *server) writeCycleError(logger log.FieldLogger, w http.ResponseWriter, err error) {
	kind := atlas.Classify(err)
	logger.WithError(err).WithField("kind", kind).Error("unable to fetch pending invoice")
	writeResponseAsJSON(logger, w, http.StatusBadGateway, errorResponse{
		Error: "unable to fetch pending invoice",
		Kind:  string(kind),
	})
}

type reportEntry struct {
	Key        string   `json:"key"`
	HourlyRate *float64 `json:"hourlyRate,omitempty"`
	*billing.Summary
}

type reportResponse struct {
	Totals []reportEntry `json:"totals"`
	Rates  []reportEntry `json:"rates"`
}

func (srv *server) rootHandler(w http.ResponseWriter, r *http.Request) {
	logger := srv.logIDs.requestLogger(srv.logger, r)
	res, err := srv.runner.Run(r.Context())
	if err != nil {
		srv.writeCycleError(logger, w, err)
		return
	}
	writeResponseAsJSON(logger, w, http.StatusOK, newReportResponse(res))
}

func newReportResponse(res billing.Result) reportResponse {
	resp := reportResponse{
		Totals: make([]reportEntry, 0, len(res.Totals)),
		Rates:  make([]reportEntry, 0, len(res.Rates)),
	}
	for _, key := range res.Totals.Keys() {
		resp.Totals = append(resp.Totals, reportEntry{Key: key, Summary: res.Totals[key]})
	}
	for _, key := range res.Rates.Keys() {
		summary := res.Rates[key]
		entry := reportEntry{Key: key, Summary: summary}
		if rate, ok := summary.HourlyRate(); ok {
			entry.HourlyRate = &rate
		}
		resp.Rates = append(resp.Rates, entry)
	}
	return resp
}
