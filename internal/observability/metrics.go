package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the Prometheus registry, including the limiter
// families recorded by LimiterMetrics, on a listener of its own so scrapes
// never compete with outbound API traffic.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer builds the scrape endpoint at path on the given port.
// Without a Prometheus exporter on the provider the endpoint serves 404s,
// so a scrape against a tracing-only setup fails loudly instead of
// returning an empty page.
func NewMetricsServer(port int, path string, provider *Provider) *MetricsServer {
	mux := http.NewServeMux()

	if provider != nil && provider.promExporter != nil {
		mux.Handle(path, promhttp.Handler())
	}

	return &MetricsServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

// Start serves scrapes until Shutdown is called. It blocks, returning
// http.ErrServerClosed after a graceful shutdown.
func (ms *MetricsServer) Start() error {
	slog.Info("Metrics endpoint listening", "addr", ms.server.Addr)
	return ms.server.ListenAndServe()
}

// Shutdown stops the listener, waiting for in-flight scrapes up to ctx.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}
