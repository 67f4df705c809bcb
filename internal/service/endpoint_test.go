package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixer-service/internal/domain/model"
)

func TestBuildQuery(t *testing.T) {
	date := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	symbols := []model.Currency{"GBP", "CZK", "RUB", "EUR", "ZAR", "USD"}

	testCases := []struct {
		name    string
		request model.Request
		symbols []model.Currency
		want    string
	}{
		{
			name:    "current rate",
			request: model.CurrentRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD"},
			want:    "latest?access_key=xxxfreexxx&base=EUR",
		},
		{
			name:    "current rate with symbols",
			request: model.CurrentRateRequest{BaseCurrency: "CZK", QuoteCurrency: "USD"},
			symbols: symbols,
			want:    "latest?access_key=xxxfreexxx&base=CZK&symbols=GBP%2CCZK%2CRUB%2CEUR%2CZAR%2CUSD",
		},
		{
			name:    "historical rate",
			request: model.HistoricalRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD", Date: date},
			want:    "2025-06-13?access_key=xxxfreexxx&base=EUR",
		},
		{
			name:    "historical rate with empty symbols",
			request: model.HistoricalRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD", Date: date},
			symbols: []model.Currency{},
			want:    "2025-06-13?access_key=xxxfreexxx&base=EUR",
		},
		{
			name: "current conversion ignores symbols",
			request: model.CurrentConversionRequest{
				BaseAmount: decimal.RequireFromString("1000"), BaseCurrency: "PHP", QuoteCurrency: "EUR",
			},
			symbols: symbols,
			want:    "convert?access_key=xxxfreexxx&from=PHP&to=EUR&amount=1000",
		},
		{
			name: "historical conversion keeps decimal text",
			request: model.HistoricalConversionRequest{
				BaseAmount: decimal.RequireFromString("0.1000000000000000055511151231257827"), BaseCurrency: "USD", QuoteCurrency: "EUR", Date: date,
			},
			want: "convert?access_key=xxxfreexxx&from=USD&to=EUR&amount=0.1000000000000000055511151231257827&date=2025-06-13",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := BuildQuery("xxxfreexxx", tc.request, tc.symbols)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.String())
		})
	}
}

func TestBuildQuery_Unsupported(t *testing.T) {
	_, err := BuildQuery("k", unknownRequest{}, nil)
	assert.True(t, errors.Is(err, model.ErrRequestNotSupported))
}

func TestCanonicalQuery_EscapesAndURL(t *testing.T) {
	q := CanonicalQuery{
		Path:   "latest",
		Params: []Param{{Key: "access_key", Value: "a b&c"}, {Key: "base", Value: "EUR"}},
	}

	assert.Equal(t, "access_key=a%20b%26c&base=EUR", q.Encode())
	assert.Equal(t, "https://data.fixer.io/api/latest?access_key=a%20b%26c&base=EUR", q.URL("https://data.fixer.io/api/"))
}

func TestCanonicalQuery_CacheKey(t *testing.T) {
	a, err := BuildQuery("k", model.CurrentRateRequest{BaseCurrency: "EUR", QuoteCurrency: "USD"}, nil)
	require.NoError(t, err)
	b, err := BuildQuery("k", model.CurrentRateRequest{BaseCurrency: "EUR", QuoteCurrency: "GBP"}, nil)
	require.NoError(t, err)
	c, err := BuildQuery("k", model.CurrentRateRequest{BaseCurrency: "CZK", QuoteCurrency: "USD"}, nil)
	require.NoError(t, err)

	// The quote currency is not part of the query, so both share one payload.
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.Len(t, a.CacheKey(), 64)
}
