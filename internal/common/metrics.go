package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CounterRequests      *prometheus.CounterVec
	CounterPanics        prometheus.Counter
	CounterBlogsCreated  prometheus.Counter
	CounterSlugRetries   prometheus.Counter
	CounterComments      prometheus.Counter
	CounterImageUploads  prometheus.Counter
	CounterRateLimited   prometheus.Counter
	CounterMailsSent     *prometheus.CounterVec
	GaugeRequests        prometheus.Gauge
	HistRequestDuration  *prometheus.HistogramVec
	HistSlugResolveSteps prometheus.Histogram
}

func NewTestMetrics() *Metrics {
	return NewMetrics("bloghub", "test", prometheus.NewRegistry())
}

func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic_total",
			Help:      "The total number of recovered handler panics",
		}),
		CounterBlogsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "blogs_created_total",
			Help:      "The total number of created blogs",
		}),
		CounterSlugRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slug_conflict_retries_total",
			Help:      "Writes retried after losing a slug unique constraint race",
		}),
		CounterComments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "comments_created_total",
			Help:      "The total number of created comments",
		}),
		CounterImageUploads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "image_uploads_total",
			Help:      "The total number of uploaded images",
		}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		CounterMailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "mails_total",
			Help:      "Mails processed by template and result",
		}, []string{"template", "result"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HistSlugResolveSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slug_resolve_steps",
			Help:      "Number of candidates checked before a free slug was found",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 100},
		}),
	}
}
