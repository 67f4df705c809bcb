package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"fixer-service/internal/domain/model"
	"fixer-service/pkg/utils"
)

const (
	pathLatest  = "latest"
	pathConvert = "convert"
)

type Param struct {
	Key   string
	Value string
}

// CanonicalQuery is the provider path plus its parameters in a fixed order.
// Its encoded form is both the outbound query and the cache key input.
type CanonicalQuery struct {
	Path   string
	Params []Param
}

// BuildQuery turns a request into its canonical query. symbols restricts
// rate lookups and is ignored for conversions.
func BuildQuery(accessKey string, request model.Request, symbols []model.Currency) (CanonicalQuery, error) {
	switch r := model.Normalize(request).(type) {
	case model.CurrentRateRequest:
		return rateQuery(pathLatest, accessKey, r.BaseCurrency, symbols), nil
	case model.HistoricalRateRequest:
		return rateQuery(utils.FormatDate(r.Date), accessKey, r.BaseCurrency, symbols), nil
	case model.CurrentConversionRequest:
		return CanonicalQuery{
			Path:   pathConvert,
			Params: conversionParams(accessKey, r.BaseCurrency, r.QuoteCurrency, r.BaseAmount.String()),
		}, nil
	case model.HistoricalConversionRequest:
		params := conversionParams(accessKey, r.BaseCurrency, r.QuoteCurrency, r.BaseAmount.String())
		return CanonicalQuery{
			Path:   pathConvert,
			Params: append(params, Param{Key: "date", Value: utils.FormatDate(r.Date)}),
		}, nil
	default:
		return CanonicalQuery{}, fmt.Errorf("%w: %T", model.ErrRequestNotSupported, request)
	}
}

func rateQuery(path, accessKey string, base model.Currency, symbols []model.Currency) CanonicalQuery {
	params := []Param{
		{Key: "access_key", Value: accessKey},
		{Key: "base", Value: base.String()},
	}
	if len(symbols) > 0 {
		params = append(params, Param{Key: "symbols", Value: model.JoinSymbols(symbols)})
	}
	return CanonicalQuery{Path: path, Params: params}
}

func conversionParams(accessKey string, from, to model.Currency, amount string) []Param {
	return []Param{
		{Key: "access_key", Value: accessKey},
		{Key: "from", Value: from.String()},
		{Key: "to", Value: to.String()},
		{Key: "amount", Value: amount},
	}
}

// Encode renders the parameters as an RFC 3986 query string in builder order.
func (q CanonicalQuery) Encode() string {
	var sb strings.Builder
	for i, p := range q.Params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(escape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(escape(p.Value))
	}
	return sb.String()
}

func (q CanonicalQuery) String() string {
	return q.Path + "?" + q.Encode()
}

// URL joins the query onto the provider root.
func (q CanonicalQuery) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + q.String()
}

// CacheKey is a hex SHA-256 of the serialized query.
func (q CanonicalQuery) CacheKey() string {
	sum := sha256.Sum256([]byte(q.String()))
	return hex.EncodeToString(sum[:])
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
