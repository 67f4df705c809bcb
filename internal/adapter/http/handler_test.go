package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixer-service/internal/domain/model"
	"fixer-service/internal/metrics"
	"fixer-service/internal/service"
	"fixer-service/pkg/logger"
)

type MockRateService struct {
	SupportsFunc func(request model.Request) bool
	DispatchFunc func(ctx context.Context, request model.Request) (model.Outcome, error)

	lastRequest model.Request
}

func (m *MockRateService) Supports(request model.Request) bool {
	m.lastRequest = request
	return m.SupportsFunc(request)
}

func (m *MockRateService) Dispatch(ctx context.Context, request model.Request) (model.Outcome, error) {
	m.lastRequest = request
	return m.DispatchFunc(ctx, request)
}

func newTestRouter(svc *MockRateService) (http.Handler, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	log := logger.Discard()
	router := NewRouter(NewHandler(svc, log), log, m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return router.SetupRoutes(), m
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_Dispatch(t *testing.T) {
	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		url         string
		outcome     model.Outcome
		err         error
		wantStatus  int
		wantRequest model.Request
		wantData    map[string]any
		wantError   string
	}{
		{
			name:        "latest rate",
			url:         "/api/v1/rates?from=eur&to=USD",
			outcome:     model.RateResult{Rate: decimal.RequireFromString("1.151477"), Date: date},
			wantStatus:  http.StatusOK,
			wantRequest: model.CurrentRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD"},
			wantData:    map[string]any{"base": "EUR", "quote": "USD", "rate": "1.151477", "date": "2025-06-30"},
		},
		{
			name:        "rate keeps provider scale",
			url:         "/api/v1/rates?from=EUR&to=USD",
			outcome:     model.RateResult{Rate: decimal.RequireFromString("1.150000"), Date: date},
			wantStatus:  http.StatusOK,
			wantRequest: model.CurrentRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD"},
			wantData:    map[string]any{"base": "EUR", "quote": "USD", "rate": "1.150000", "date": "2025-06-30"},
		},
		{
			name:        "historical rate not found",
			url:         "/api/v1/historical?from=EUR&to=XXX&date=2035-01-01",
			outcome:     model.NewFailure(model.RateNotFound, "rate for EUR/XXX not found"),
			wantStatus:  http.StatusNotFound,
			wantRequest: model.HistoricalRateRequest{BaseCurrency: "EUR", QuoteCurrency: "XXX", Date: time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)},
			wantError:   "rate for EUR/XXX not found",
		},
		{
			name:        "conversion",
			url:         "/api/v1/convert?from=PHP&to=EUR&amount=1000",
			outcome:     model.ConversionResult{Amount: decimal.RequireFromString("15.093"), Date: date},
			wantStatus:  http.StatusOK,
			wantRequest: model.CurrentConversionRequest{BaseAmount: decimal.RequireFromString("1000"), BaseCurrency: "PHP", QuoteCurrency: "EUR"},
			wantData:    map[string]any{"from": "PHP", "to": "EUR", "amount": "1000", "result": "15.093", "date": "2025-06-30"},
		},
		{
			name:        "historical conversion not performed",
			url:         "/api/v1/convert?from=PHP&to=EUR&amount=1000&date=2035-01-01",
			outcome:     model.NewFailure(model.ConversionNotPerformed, "conversion from PHP to EUR was not performed"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantRequest: model.HistoricalConversionRequest{BaseAmount: decimal.RequireFromString("1000"), BaseCurrency: "PHP", QuoteCurrency: "EUR", Date: time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)},
			wantError:   "conversion from PHP to EUR was not performed",
		},
		{
			name:       "conversion not supported",
			url:        "/api/v1/convert?from=PHP&to=EUR",
			outcome:    model.NewFailure(model.RequestNotSupported, "conversion is not available for the free tier", model.ErrAccessTierRejected),
			wantStatus: http.StatusBadRequest,
			wantError:  "conversion is not available for the free tier",
		},
		{
			name:       "provider hard failure",
			url:        "/api/v1/rates?from=EUR&to=USD",
			err:        &service.HardFailureError{StatusCode: 200, Body: []byte(`{"success":false}`), ErrorCode: 101},
			wantStatus: http.StatusBadGateway,
			wantError:  "rate provider request failed",
		},
		{
			name:       "provider unreachable",
			url:        "/api/v1/rates?from=EUR&to=USD",
			err:        errors.Join(service.ErrHardFailure, errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "rate provider unavailable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockRateService{
				DispatchFunc: func(ctx context.Context, request model.Request) (model.Outcome, error) {
					return tc.outcome, tc.err
				},
			}
			routes, _ := newTestRouter(svc)

			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeResponse(t, rec)
			if tc.wantRequest != nil {
				assert.Equal(t, tc.wantRequest, svc.lastRequest)
			}
			if tc.wantData != nil {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, tc.wantData, body["data"])
			}
			if tc.wantError != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tc.wantError, body["error"])
			}
		})
	}
}

func TestHandler_BadRequests(t *testing.T) {
	urls := []string{
		"/api/v1/rates?from=EUR",
		"/api/v1/historical?from=EUR&to=USD",
		"/api/v1/historical?from=EUR&to=USD&date=13-06-2025",
		"/api/v1/convert?to=USD",
		"/api/v1/convert?from=EUR&to=USD&amount=abc",
		"/api/v1/convert?from=EUR&to=USD&date=yesterday",
		"/api/v1/supports?type=swap&from=EUR&to=USD",
	}

	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			svc := &MockRateService{}
			routes, _ := newTestRouter(svc)

			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.lastRequest, "service must not be called")
		})
	}
}

func TestHandler_Supports(t *testing.T) {
	svc := &MockRateService{
		SupportsFunc: func(request model.Request) bool {
			_, isConversion := request.(model.CurrentConversionRequest)
			return !isConversion
		},
	}
	routes, _ := newTestRouter(svc)

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/supports?type=conversion&from=PHP&to=EUR&amount=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"supported": false}, decodeResponse(t, rec)["data"])

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/supports?from=EUR&to=USD", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"supported": true}, decodeResponse(t, rec)["data"])
}

func TestRouter_HealthMetricsAndRequestID(t *testing.T) {
	svc := &MockRateService{
		DispatchFunc: func(ctx context.Context, request model.Request) (model.Outcome, error) {
			return model.RateResult{Rate: decimal.RequireFromString("1.1"), Date: time.Now()}, nil
		},
	}
	routes, m := newTestRouter(svc)

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates?from=EUR&to=USD", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/rates", http.MethodGet, "2xx")))

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
