package ports

import (
	"context"
	"net/http"
)

type TransportResponse struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single synchronous request. Timeouts and
// connection handling belong to the implementation.
type Transport interface {
	Send(ctx context.Context, method, url string, headers http.Header) (*TransportResponse, error)
}
