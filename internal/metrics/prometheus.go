package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "github.com/weak-head/bin2hex64/api/v1"
)

var (
	// imageDuration tracks the time to retrieve, convert and store a binary.
	imageDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "image_conversion_duration_seconds",
			Help:       "Binary to hex image conversion duration distributions.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"engine", "source_kind"},
	)

	imageDurationsHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_conversion_duration_histogram_seconds",
			Help:    "Binary to hex image conversion duration distributions.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"engine", "source_kind"},
	)

	imagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "converted_images_total",
			Help: "Number of converted binaries.",
		},
		[]string{"engine", "source_kind"},
	)

	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "converted_bytes_total",
			Help: "Number of converted binary bytes, without padding.",
		},
		[]string{"engine", "source_kind"},
	)

	paddingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "padding_bytes_total",
			Help: "Number of zero bytes appended to align binaries to 64-bit words.",
		},
		[]string{"engine", "source_kind"},
	)

	pipelineFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Number of pipeline errors.",
		},
		[]string{"engine", "failure"},
	)
)

// Collectors returns all the conversion collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		imageDuration,
		imageDurationsHistogram,
		imagesTotal,
		bytesTotal,
		paddingTotal,
		pipelineFailures,
	}
}

// prometheusServer exposes the conversion metrics over http.
type prometheusServer struct {
	server   *http.Server
	registry *prometheus.Registry
	conf     Config
}

// NewPrometheusServer
func NewPrometheusServer(conf Config) (*prometheusServer, error) {
	p := &prometheusServer{
		registry: prometheus.NewRegistry(),
		conf:     conf,
	}

	for _, c := range append(Collectors(), collectors.NewBuildInfoCollector()) {
		if err := p.registry.Register(c); err != nil {
			return nil, err
		}
	}

	p.server = &http.Server{
		Addr: p.conf.Addr,
		Handler: promhttp.HandlerFor(
			p.registry,
			promhttp.HandlerOpts{EnableOpenMetrics: true},
		),
	}

	return p, nil
}

// Serve
func (p *prometheusServer) Serve() error {
	if err := p.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop
func (p *prometheusServer) Stop(ctx context.Context) error {
	return p.server.Shutdown(ctx)
}

// reporter
type reporter struct {
	info ServiceInfo
}

// NewReporter
func NewReporter(info ServiceInfo) (*reporter, error) {
	return &reporter{info: info}, nil
}

// ImageConverted
func (r *reporter) ImageConverted(sourceKind string, seconds float64, image *api.ConvertedImage) {
	imageDuration.WithLabelValues(r.info.Engine, sourceKind).Observe(seconds)
	imageDurationsHistogram.WithLabelValues(r.info.Engine, sourceKind).Observe(seconds)
	imagesTotal.WithLabelValues(r.info.Engine, sourceKind).Inc()
	bytesTotal.WithLabelValues(r.info.Engine, sourceKind).Add(float64(image.Bytes))
	paddingTotal.WithLabelValues(r.info.Engine, sourceKind).Add(float64(image.Padding))
}

// PipelineFailed
func (r *reporter) PipelineFailed(failure string) {
	pipelineFailures.WithLabelValues(r.info.Engine, failure).Inc()
}
