package server

import (
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promRegistry = prom.NewRegistry()

	httpRequestsTotal = prom.NewCounter(prom.CounterOpts{Namespace: "textkit", Name: "http_requests_total", Help: "HTTP requests handled"})
	checksTotal       = prom.NewCounter(prom.CounterOpts{Namespace: "textkit", Name: "url_checks_total", Help: "URLs checked"})
	checksFailedTotal = prom.NewCounter(prom.CounterOpts{Namespace: "textkit", Name: "url_checks_failed_total", Help: "URL checks that found a dead link"})
	cacheHitsTotal    = prom.NewCounter(prom.CounterOpts{Namespace: "textkit", Name: "url_check_cache_hits_total", Help: "URL checks answered from the result cache"})
)

var registerMetricsOnce sync.Once

// metricsHandler registers the collectors once and serves the registry.
func metricsHandler() http.Handler {
	registerMetricsOnce.Do(func() {
		promRegistry.MustRegister(httpRequestsTotal, checksTotal, checksFailedTotal, cacheHitsTotal)
		promRegistry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	})
	return promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
}
