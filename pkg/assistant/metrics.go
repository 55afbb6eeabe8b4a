package assistant

import (
	"errors"

	"github.com/dasmlab/pharmagen/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var queriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pharmagen_queries_total",
		Help: "Total number of user queries by outcome",
	},
	[]string{"outcome"},
)

// outcome labels a finished query for metrics and logs.
func outcome(err error) string {
	var modelErr *model.Error
	switch {
	case err == nil:
		return "answered"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrUnsupportedLanguage):
		return "unsupported_language"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.As(err, &modelErr):
		return "model_" + modelErr.Kind.String()
	default:
		return "error"
	}
}

func recordQuery(err error) {
	queriesTotal.WithLabelValues(outcome(err)).Inc()
}
