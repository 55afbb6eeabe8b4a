package model

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	modelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmagen_model_requests_total",
			Help: "Total number of requests sent to the generative model",
		},
		[]string{"engine", "status"},
	)

	modelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pharmagen_model_request_duration_seconds",
			Help:    "Duration of generative model requests in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"engine", "status"},
	)

	modelPromptSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pharmagen_model_prompt_size_bytes",
			Help:    "Size of prompt text in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"engine"},
	)

	modelResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pharmagen_model_response_size_bytes",
			Help:    "Size of model response text in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"engine"},
	)
)

// recordRequest records metrics for one Submit call. The status label is
// "success" or the failure kind.
func recordRequest(engine EngineType, duration time.Duration, promptSize int, resp Response) {
	status := "success"
	if resp.Status == StatusError && resp.Err != nil {
		status = resp.Err.Kind.String()
	}

	e := string(engine)
	modelRequestsTotal.WithLabelValues(e, status).Inc()
	modelRequestDuration.WithLabelValues(e, status).Observe(duration.Seconds())
	modelPromptSize.WithLabelValues(e).Observe(float64(promptSize))
	if resp.Status == StatusOK {
		modelResponseSize.WithLabelValues(e).Observe(float64(len(resp.Body)))
	}
}
