package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	chatRepliesTotal       *prometheus.CounterVec
	predictorRequestsTotal *prometheus.CounterVec
	trackerMutationsTotal  *prometheus.CounterVec
	roadmapRequestsTotal   *prometheus.CounterVec
	roadmapLatencySeconds  prometheus.Histogram
	uploadRequestsTotal    *prometheus.CounterVec
	uploadRejectedTotal    *prometheus.CounterVec
	uploadLatencySeconds   prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		chatRepliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_replies_total",
			Help: "Chat relay replies by outcome.",
		}, []string{"outcome"})

		predictorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_requests_total",
			Help: "End-term predictions served by formula family and eligibility.",
		}, []string{"family", "eligible"})

		trackerMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_mutations_total",
			Help: "Grade tracker mutations by operation.",
		}, []string{"operation"})

		roadmapRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_requests_total",
			Help: "Roadmap listing requests by cache result.",
		}, []string{"result"})

		roadmapLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_latency_seconds",
			Help:    "Latency of roadmap listing.",
			Buckets: prometheus.DefBuckets,
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Stored uploads by file type.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Rejected uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency of upload processing.",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			chatRepliesTotal,
			predictorRequestsTotal,
			trackerMutationsTotal,
			roadmapRequestsTotal,
			roadmapLatencySeconds,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ChatReplies counts relay outcomes: upstream, fallback.
func ChatReplies() *prometheus.CounterVec {
	RegisterMetrics()
	return chatRepliesTotal
}

// PredictorRequests counts predictions by family.
func PredictorRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return predictorRequestsTotal
}

// TrackerMutations counts grade tracker writes.
func TrackerMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return trackerMutationsTotal
}

// RoadmapRequests counts roadmap listings by cache result.
func RoadmapRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return roadmapRequestsTotal
}

// RoadmapLatency observes roadmap listing latency.
func RoadmapLatency() prometheus.Histogram {
	RegisterMetrics()
	return roadmapLatencySeconds
}

// UploadRequests counts stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes upload processing latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
