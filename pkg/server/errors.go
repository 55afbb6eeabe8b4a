package server

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/dasmlab/pharmagen/pkg/model"
)

// httpStatus maps a pipeline error to the HTTP status returned to callers.
func httpStatus(err error) int {
	switch {
	case assistant.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrModelQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// grpcCode maps a pipeline error to a gRPC status code.
func grpcCode(err error) codes.Code {
	switch {
	case assistant.IsInputError(err):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrModelQuota):
		return codes.ResourceExhausted
	case errors.Is(err, model.ErrModelUnavailable):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
