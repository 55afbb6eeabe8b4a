package model

import (
	"net/http"
	"strings"
)

// KindForStatus maps an HTTP status code (and the API's status string, if any)
// to a failure kind.
func KindForStatus(code int, apiStatus string) Kind {
	switch {
	case code == http.StatusTooManyRequests, strings.EqualFold(apiStatus, "RESOURCE_EXHAUSTED"):
		return KindQuota
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		strings.EqualFold(apiStatus, "UNAUTHENTICATED"), strings.EqualFold(apiStatus, "PERMISSION_DENIED"):
		return KindAuth
	case code >= 500, code == http.StatusRequestTimeout:
		return KindUnavailable
	case code >= 400:
		return KindRejected
	default:
		return KindUnavailable
	}
}

// KindForMessage classifies an error that carries no status code by its text.
func KindForMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "429"), strings.Contains(m, "quota"), strings.Contains(m, "rate limit"):
		return KindQuota
	case strings.Contains(m, "401"), strings.Contains(m, "unauthorized"), strings.Contains(m, "api key"):
		return KindAuth
	default:
		return KindUnavailable
	}
}
