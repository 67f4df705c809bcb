package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fixer-service/internal/domain/model"
	"fixer-service/internal/domain/ports"
	"fixer-service/internal/service"
	"fixer-service/pkg/logger"
	"fixer-service/pkg/utils"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type RateData struct {
	Base  model.Currency `json:"base"`
	Quote model.Currency `json:"quote"`
	Rate  string         `json:"rate"`
	Date  string         `json:"date"`
}

type ConversionData struct {
	From   model.Currency `json:"from"`
	To     model.Currency `json:"to"`
	Amount string         `json:"amount"`
	Result string         `json:"result"`
	Date   string         `json:"date"`
}

type Handler struct {
	service ports.RateService
	log     *logger.Logger
}

func NewHandler(service ports.RateService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func currencyParam(r *http.Request, name string) model.Currency {
	return model.Currency(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(name))))
}

func (h *Handler) GetLatestRateHandler(w http.ResponseWriter, r *http.Request) {
	from := currencyParam(r, "from")
	to := currencyParam(r, "to")

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	h.dispatch(w, r, model.CurrentRateRequest{BaseCurrency: from, QuoteCurrency: to})
}

func (h *Handler) GetHistoricalRateHandler(w http.ResponseWriter, r *http.Request) {
	from := currencyParam(r, "from")
	to := currencyParam(r, "to")
	dateStr := r.URL.Query().Get("date")

	if from == "" || to == "" || dateStr == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from, to, and date")
		return
	}

	date, err := utils.ParseDate(dateStr)
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		return
	}

	h.dispatch(w, r, model.HistoricalRateRequest{BaseCurrency: from, QuoteCurrency: to, Date: date})
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	request, msg := parseConversion(r)
	if msg != "" {
		h.sendErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	h.dispatch(w, r, request)
}

// SupportsHandler answers whether a request would be attempted, without calling the provider.
func (h *Handler) SupportsHandler(w http.ResponseWriter, r *http.Request) {
	var request model.Request

	switch r.URL.Query().Get("type") {
	case "rate", "":
		from, to := currencyParam(r, "from"), currencyParam(r, "to")
		if from == "" || to == "" {
			h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
			return
		}
		request = model.CurrentRateRequest{BaseCurrency: from, QuoteCurrency: to}
	case "conversion":
		conv, msg := parseConversion(r)
		if msg != "" {
			h.sendErrorResponse(w, http.StatusBadRequest, msg)
			return
		}
		request = conv
	default:
		h.sendErrorResponse(w, http.StatusBadRequest, "type must be rate or conversion")
		return
	}

	h.sendSuccessResponse(w, map[string]bool{"supported": h.service.Supports(request)})
}

func parseConversion(r *http.Request) (model.Request, string) {
	from := currencyParam(r, "from")
	to := currencyParam(r, "to")
	amountStr := r.URL.Query().Get("amount")
	dateStr := r.URL.Query().Get("date")

	if from == "" || to == "" {
		return nil, "missing required parameters: from and to"
	}

	amount := decimal.NewFromInt(1)
	if amountStr != "" {
		var err error
		amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, "invalid amount parameter"
		}
	}

	if dateStr == "" {
		return model.CurrentConversionRequest{BaseAmount: amount, BaseCurrency: from, QuoteCurrency: to}, ""
	}

	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, "invalid date format, use YYYY-MM-DD"
	}
	return model.HistoricalConversionRequest{BaseAmount: amount, BaseCurrency: from, QuoteCurrency: to, Date: date}, ""
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, request model.Request) {
	outcome, err := h.service.Dispatch(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	switch o := outcome.(type) {
	case model.RateResult:
		base, quote := rateCurrencies(request)
		h.sendSuccessResponse(w, RateData{Base: base, Quote: quote, Rate: model.FormatDecimal(o.Rate), Date: utils.FormatDate(o.Date)})
	case model.ConversionResult:
		h.sendSuccessResponse(w, conversionData(request, o.Amount, o.Date))
	case *model.Failure:
		h.sendErrorResponse(w, failureStatus(o.Kind), o.Detail)
	default:
		h.log.Error("Unexpected outcome", "outcome", outcome)
		h.sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func rateCurrencies(request model.Request) (model.Currency, model.Currency) {
	switch r := request.(type) {
	case model.CurrentRateRequest:
		return r.BaseCurrency, r.QuoteCurrency
	case model.HistoricalRateRequest:
		return r.BaseCurrency, r.QuoteCurrency
	}
	return "", ""
}

func conversionData(request model.Request, result decimal.Decimal, date time.Time) ConversionData {
	data := ConversionData{Result: model.FormatDecimal(result), Date: utils.FormatDate(date)}
	switch r := request.(type) {
	case model.CurrentConversionRequest:
		data.From, data.To, data.Amount = r.BaseCurrency, r.QuoteCurrency, model.FormatDecimal(r.BaseAmount)
	case model.HistoricalConversionRequest:
		data.From, data.To, data.Amount = r.BaseCurrency, r.QuoteCurrency, model.FormatDecimal(r.BaseAmount)
	}
	return data
}

func failureStatus(kind model.FailureKind) int {
	switch kind {
	case model.RateNotFound:
		return http.StatusNotFound
	case model.ConversionNotPerformed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	var hf *service.HardFailureError
	switch {
	case errors.As(err, &hf):
		statusCode = http.StatusBadGateway
		errorMessage = "rate provider request failed"
	case errors.Is(err, service.ErrHardFailure):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "rate provider unavailable"
	}

	h.log.Error("Request failed", "error", err, "status", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage)
}
