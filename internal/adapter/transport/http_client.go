package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fixer-service/internal/domain/ports"
	"fixer-service/pkg/logger"
)

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 4 << 20

// HTTPTransport sends provider requests with a net/http client.
type HTTPTransport struct {
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPTransport(timeout time.Duration, log *logger.Logger) *HTTPTransport {
	return NewHTTPTransportWithClient(&http.Client{Timeout: timeout}, log)
}

func NewHTTPTransportWithClient(client *http.Client, log *logger.Logger) *HTTPTransport {
	return &HTTPTransport{
		httpClient: client,
		log:        log,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, method, url string, headers http.Header) (*ports.TransportResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	t.log.Debug("Provider responded", "method", method, "path", req.URL.Path, "status", resp.StatusCode, "bytes", len(body))

	return &ports.TransportResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

var _ ports.Transport = (*HTTPTransport)(nil)
