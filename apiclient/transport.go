package apiclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// loggingTransport tags every outgoing request with a request id and logs the
// exchange at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	event := t.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("api request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("api request")
	return resp, nil
}
