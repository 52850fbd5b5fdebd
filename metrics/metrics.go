// Package metrics exposes pipeline counters over Prometheus.
//
// It is the diagnostic side channel for dropped frames: the rendered output
// stream never carries error information.
package metrics

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Input metrics
	BytesRead    prometheus.Counter
	ChunksRead   prometheus.Counter
	PendingBytes prometheus.Gauge

	// Frame metrics
	FramesRendered prometheus.Counter
	FramesDropped  *prometheus.CounterVec
	FrameSize      prometheus.Histogram
	RenderDuration prometheus.Histogram
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "asciiterm_input_bytes_total",
			Help: "Total bytes read from the input stream",
		}),
		ChunksRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "asciiterm_input_chunks_total",
			Help: "Total non-empty reads from the input stream",
		}),
		PendingBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "asciiterm_pending_bytes",
			Help: "Bytes buffered for the frame still being received",
		}),

		FramesRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "asciiterm_frames_rendered_total",
			Help: "Total frames written to the output stream",
		}),
		FramesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asciiterm_frames_dropped_total",
				Help: "Total frames dropped before output",
			},
			[]string{"reason"}, // empty, unsupported, decode, render, tail
		),
		FrameSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "asciiterm_frame_size_bytes",
			Help:    "Size of encoded frames in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~2MB
		}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "asciiterm_frame_render_seconds",
			Help:    "Time from completed blob to written frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
	}
}

// ChunkRead records a non-empty read and the resulting buffer backlog
func (m *Metrics) ChunkRead(n, pending int) {
	m.ChunksRead.Inc()
	m.BytesRead.Add(float64(n))
	m.PendingBytes.Set(float64(pending))
}

// FrameRendered records a frame written to output
func (m *Metrics) FrameRendered(size int, elapsed time.Duration) {
	m.FramesRendered.Inc()
	m.FrameSize.Observe(float64(size))
	m.RenderDuration.Observe(elapsed.Seconds())
}

// FrameDropped records a frame discarded for reason
func (m *Metrics) FrameDropped(reason string, size int) {
	m.FramesDropped.WithLabelValues(reason).Inc()
	m.FrameSize.Observe(float64(size))
}

// Handler serves the metrics gathered by g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve binds addr and serves /metrics in a background goroutine.
// Bind errors are returned; later serve errors are logged.
func Serve(addr string, g prometheus.Gatherer) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	log.Printf("metrics listening on %s", ln.Addr())
	return srv, nil
}
