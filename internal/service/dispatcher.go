package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"fixer-service/internal/adapter/cache"
	"fixer-service/internal/domain/model"
	"fixer-service/internal/domain/ports"
	"fixer-service/internal/metrics"
	"fixer-service/pkg/logger"
	"fixer-service/pkg/utils"
)

const (
	DefaultBaseURL = "https://data.fixer.io/api"
	DefaultTTL     = time.Hour

	// CoreProduct and ClientProduct are the User-Agent product tokens of
	// this client, in that order.
	CoreProduct   = "Peso"
	ClientProduct = "FixerClient"
)

// CoreVersion and Version are reported in the User-Agent header. Set with
// -ldflags at build time.
var (
	CoreVersion = "1.0.0"
	Version     = "1.0.0"
)

type Config struct {
	AccessKey string
	Tier      model.AccessTier
	// Symbols restricts rate lookups to these quote currencies, in order.
	Symbols []model.Currency
	BaseURL string
	TTL     time.Duration
	// Headers are sent with every provider call. A User-Agent here is kept
	// and the client token is appended to it.
	Headers http.Header

	Transport  ports.Transport
	Cache      ports.PayloadCache
	Classifier *ErrorClassifier
	// DeduplicateInFlight collapses concurrent misses for the same query
	// into one provider call.
	DeduplicateInFlight bool

	Metrics *metrics.Metrics
	Log     *logger.Logger
}

// Dispatcher answers rate and conversion requests against the provider.
// It holds only immutable configuration and is safe for concurrent use when
// its cache and transport are.
type Dispatcher struct {
	accessKey  string
	tier       model.AccessTier
	symbols    []model.Currency
	baseURL    string
	ttl        time.Duration
	headers    http.Header
	transport  ports.Transport
	cache      ports.PayloadCache
	classifier *ErrorClassifier
	inflight   *singleflight.Group
	metrics    *metrics.Metrics
	log        *logger.Logger
}

func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Transport == nil {
		return nil, errors.New("dispatcher: transport is required")
	}

	d := &Dispatcher{
		accessKey:  cfg.AccessKey,
		tier:       cfg.Tier,
		symbols:    append([]model.Currency(nil), cfg.Symbols...),
		baseURL:    cfg.BaseURL,
		ttl:        cfg.TTL,
		headers:    cfg.Headers.Clone(),
		transport:  cfg.Transport,
		cache:      cfg.Cache,
		classifier: cfg.Classifier,
		metrics:    cfg.Metrics,
		log:        cfg.Log,
	}

	if d.baseURL == "" {
		d.baseURL = DefaultBaseURL
	}
	if d.ttl <= 0 {
		d.ttl = DefaultTTL
	}
	if d.headers == nil {
		d.headers = http.Header{}
	}
	d.headers.Set("User-Agent", userAgent(d.headers.Get("User-Agent")))
	if d.cache == nil {
		d.cache = cache.NewNoopCache()
	}
	if d.classifier == nil {
		d.classifier = DefaultErrorClassifier()
	}
	if cfg.DeduplicateInFlight {
		d.inflight = &singleflight.Group{}
	}
	if d.log == nil {
		d.log = logger.Discard()
	}

	return d, nil
}

func userAgent(existing string) string {
	own := CoreProduct + "/" + CoreVersion + " " + ClientProduct + "/" + Version
	if existing = strings.TrimSpace(existing); existing == "" {
		return own
	}
	return existing + " " + own
}

// Supports reports whether Dispatch would attempt the request. It performs no I/O.
func (d *Dispatcher) Supports(request model.Request) bool {
	return CanAttempt(d.tier, request)
}

// Dispatch resolves the request to an Outcome. Business failures are
// returned as *model.Failure outcomes; the error result is reserved for hard
// failures, which wrap ErrHardFailure.
func (d *Dispatcher) Dispatch(ctx context.Context, request model.Request) (model.Outcome, error) {
	request = model.Normalize(request)
	kind := requestName(request)

	outcome, err := d.dispatch(ctx, request)
	switch {
	case err != nil:
		d.metrics.ObserveDispatch(kind, "hard_failure")
	default:
		d.metrics.ObserveDispatch(kind, outcomeName(outcome))
	}

	return outcome, err
}

func (d *Dispatcher) dispatch(ctx context.Context, request model.Request) (model.Outcome, error) {
	if !d.Supports(request) {
		failure := d.rejection(request)
		d.log.Debug("Request rejected", "request", requestName(request), "tier", d.tier.String(), "reason", failure.Detail)
		return failure, nil
	}

	query, err := BuildQuery(d.accessKey, request, d.symbols)
	if err != nil {
		return model.NewFailure(model.RequestNotSupported, err.Error()), nil
	}

	payload, err := d.retrieve(ctx, query, request)
	if err != nil {
		return nil, err
	}

	return mapOutcome(request, payload)
}

// rejection builds the outcome for a request the access policy refused.
// Tier rejections reuse the kinds a caller would see anyway.
func (d *Dispatcher) rejection(request model.Request) *model.Failure {
	switch r := request.(type) {
	case model.CurrentRateRequest:
		return model.NewFailure(model.RateNotFound, rateNotFoundDetail(r.BaseCurrency, r.QuoteCurrency), model.ErrAccessTierRejected)
	case model.HistoricalRateRequest:
		return model.NewFailure(model.RateNotFound, rateNotFoundDetail(r.BaseCurrency, r.QuoteCurrency), model.ErrAccessTierRejected)
	case model.CurrentConversionRequest, model.HistoricalConversionRequest:
		return model.NewFailure(model.RequestNotSupported, fmt.Sprintf("conversion is not available for the %s tier", d.tier), model.ErrAccessTierRejected)
	default:
		return model.NewFailure(model.RequestNotSupported, fmt.Sprintf("unsupported request type: %q", fmt.Sprintf("%T", request)))
	}
}

// retrieve returns the payload for the query from the cache, or fetches and
// caches it.
func (d *Dispatcher) retrieve(ctx context.Context, query CanonicalQuery, request model.Request) (*model.ProviderPayload, error) {
	key := query.CacheKey()

	if data, found := d.cache.Get(ctx, key); found {
		var payload model.ProviderPayload
		err := json.Unmarshal(data, &payload)
		if err == nil {
			err = checkPayload(&payload)
		}
		if err == nil {
			d.metrics.ObserveCacheLookup(true)
			d.log.Debug("Payload found in cache", "key", key)
			return &payload, nil
		}
		d.log.Warn("Discarding unusable cache entry", "key", key, "error", err)
	}
	d.metrics.ObserveCacheLookup(false)

	if d.inflight == nil {
		return d.fetch(ctx, key, query, request)
	}

	// The shared fetch outlives any single caller; each waiter stops on its
	// own ctx.
	ch := d.inflight.DoChan(key, func() (any, error) {
		return d.fetch(context.WithoutCancel(ctx), key, query, request)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, wrapHardFailure("wait for provider call", ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		d.log.Debug("Shared in-flight provider call", "key", key)
	}
	// Each caller gets its own copy; the payload is read-only after this.
	payload := *res.Val.(*model.ProviderPayload)
	return &payload, nil
}

func (d *Dispatcher) fetch(ctx context.Context, key string, query CanonicalQuery, request model.Request) (*model.ProviderPayload, error) {
	url := query.URL(d.baseURL)
	d.log.Debug("Fetching payload from provider", "path", query.Path)

	start := time.Now()
	resp, err := d.transport.Send(ctx, http.MethodGet, url, d.headers.Clone())
	if err != nil {
		d.metrics.ObserveProviderRequest(0, time.Since(start))
		d.log.Error("Provider request failed", "path", query.Path, "error", err)
		return nil, wrapHardFailure("send request", err)
	}
	d.metrics.ObserveProviderRequest(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Error("Provider returned non-2xx status", "path", query.Path, "status", resp.StatusCode)
		return nil, &HardFailureError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var payload model.ProviderPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		d.log.Error("Failed to decode provider response", "path", query.Path, "error", err)
		return nil, wrapHardFailure("decode response", err)
	}
	if err := checkPayload(&payload); err != nil {
		d.log.Error("Provider returned an invalid payload", "path", query.Path, "error", err)
		return nil, err
	}

	data := resp.Body
	if !payload.Success {
		code, errType := 0, ""
		if payload.Error != nil {
			code, errType = payload.Error.Code, payload.Error.Type
		}

		classification := d.classifier.Classify(code)
		d.metrics.ObserveProviderError(code, classification.String())

		if classification == HardFailure {
			d.log.Error("Provider reported an error", "path", query.Path, "code", code, "type", errType)
			return nil, &HardFailureError{StatusCode: resp.StatusCode, Body: resp.Body, ErrorCode: code, ErrorType: errType}
		}

		d.log.Info("Provider has no data for request", "path", query.Path, "code", code, "type", errType)
		payload = emptyPayload(payload.Error, request)
		if data, err = json.Marshal(payload); err != nil {
			return nil, wrapHardFailure("encode empty payload", err)
		}
	}

	if err := d.cache.Set(ctx, key, data, d.ttl); err != nil {
		d.log.Error("Failed to cache provider payload", "key", key, "error", err)
	}

	return &payload, nil
}

// checkPayload rejects successful payloads that cannot be mapped, so they are
// never cached.
func checkPayload(payload *model.ProviderPayload) error {
	if !payload.Success {
		return nil
	}
	if _, err := utils.ParseDate(payload.Date); err != nil {
		return wrapHardFailure("parse payload date", err)
	}
	return nil
}

// emptyPayload is the benign stand-in for a "no data" provider error: no
// rates, no result, success stays false.
func emptyPayload(providerErr *model.ProviderError, request model.Request) model.ProviderPayload {
	payload := model.ProviderPayload{
		Rates: map[model.Currency]decimal.Decimal{},
		Error: providerErr,
	}
	switch r := request.(type) {
	case model.HistoricalRateRequest:
		payload.Date = utils.FormatDate(r.Date)
	case model.HistoricalConversionRequest:
		payload.Date = utils.FormatDate(r.Date)
	}
	return payload
}

func mapOutcome(request model.Request, payload *model.ProviderPayload) (model.Outcome, error) {
	switch r := request.(type) {
	case model.CurrentRateRequest:
		return rateOutcome(r.BaseCurrency, r.QuoteCurrency, payload)
	case model.HistoricalRateRequest:
		return rateOutcome(r.BaseCurrency, r.QuoteCurrency, payload)
	case model.CurrentConversionRequest:
		return conversionOutcome(r.BaseCurrency, r.QuoteCurrency, payload)
	case model.HistoricalConversionRequest:
		return conversionOutcome(r.BaseCurrency, r.QuoteCurrency, payload)
	default:
		return model.NewFailure(model.RequestNotSupported, fmt.Sprintf("unsupported request type: %q", fmt.Sprintf("%T", request))), nil
	}
}

func rateOutcome(base, quote model.Currency, payload *model.ProviderPayload) (model.Outcome, error) {
	rate, ok := payload.Rate(quote)
	if !ok {
		return model.NewFailure(model.RateNotFound, rateNotFoundDetail(base, quote)), nil
	}

	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return nil, wrapHardFailure("parse payload date", err)
	}

	return model.RateResult{Rate: rate, Date: date}, nil
}

func conversionOutcome(base, quote model.Currency, payload *model.ProviderPayload) (model.Outcome, error) {
	if !payload.Success || !payload.Result.Valid {
		return model.NewFailure(model.ConversionNotPerformed, fmt.Sprintf("conversion from %s to %s was not performed", base, quote)), nil
	}

	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return nil, wrapHardFailure("parse payload date", err)
	}

	return model.ConversionResult{Amount: payload.Result.Decimal, Date: date}, nil
}

func rateNotFoundDetail(base, quote model.Currency) string {
	return fmt.Sprintf("rate for %s/%s not found", base, quote)
}

func requestName(request model.Request) string {
	switch request.(type) {
	case model.CurrentRateRequest:
		return "current_rate"
	case model.HistoricalRateRequest:
		return "historical_rate"
	case model.CurrentConversionRequest:
		return "current_conversion"
	case model.HistoricalConversionRequest:
		return "historical_conversion"
	default:
		return "unknown"
	}
}

func outcomeName(outcome model.Outcome) string {
	switch o := outcome.(type) {
	case model.RateResult:
		return "rate"
	case model.ConversionResult:
		return "conversion"
	case *model.Failure:
		return o.Kind.String()
	default:
		return "unknown"
	}
}
