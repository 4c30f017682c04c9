// Package metrics records search runs as Prometheus series.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/pathviz/search"
)

// Recorder owns the search series of one registry
type Recorder struct {
	searchTotal    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	expandedCells  prometheus.Histogram
	pathCost       prometheus.Histogram
}

// NewRecorder registers the search series with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// searchTotal counts runs by outcome and heuristic
		searchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pathviz_search_total",
			Help: "Total searches by outcome and heuristic",
		}, []string{"outcome", "heuristic"}),

		// Includes observer pacing
		searchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathviz_search_duration_seconds",
			Help:    "Search wall time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"heuristic"}),

		expandedCells: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathviz_search_expanded_cells",
			Help:    "Cells expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1 to 8192
		}),

		pathCost: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathviz_search_path_cost",
			Help:    "Cost of found paths (orthogonal step 1, diagonal step √2)",
			Buckets: prometheus.LinearBuckets(0, 10, 12),
		}),
	}
}

// Observe records one finished run
func (r *Recorder) Observe(heuristicName string, res search.Result) {
	r.searchTotal.WithLabelValues(res.Outcome.String(), heuristicName).Inc()
	r.searchDuration.WithLabelValues(heuristicName).Observe(res.Duration.Seconds())
	r.expandedCells.Observe(float64(res.Expanded))
	if res.Outcome == search.PathFound {
		r.pathCost.Observe(res.Cost)
	}
}

// Serve exposes /metrics on addr until ctx is done
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("metrics: serving on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
