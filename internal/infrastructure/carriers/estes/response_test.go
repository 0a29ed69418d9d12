package estes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agexparts/freight-service/internal/domain"
)

func response(status int, body string) *domain.CarrierResponse {
	return &domain.CarrierResponse{Status: status, Body: []byte(body)}
}

func TestNormalizeQuotePicksCheapestCandidate(t *testing.T) {
	c := newTestClient(t, Config{})

	quote := c.NormalizeQuote(response(200, `{"data":[
		{"quoteId":"Q1","transitDays":3,"quoteRate":{"totalCharges":"$450.00"}},
		{"quoteId":"Q2","transitDetails":{"transitDays":2},"serviceLevelText":"LTL Standard","quoteRate":{"totalCharges":"360.52","fuel":"12.00"}},
		{"quoteId":"Q3","quoteRate":{"total":500}}
	]}`))

	require.True(t, quote.Priced())
	assert.InDelta(t, 360.52, *quote.Total, 1e-9)
	assert.Equal(t, "Q2", quote.QuoteNumber)
	assert.Equal(t, "LTL Standard", quote.ServiceLevelText)
	require.NotNil(t, quote.TransitDays)
	assert.Equal(t, 2, *quote.TransitDays)
	assert.JSONEq(t, `{"totalCharges":"360.52","fuel":"12.00"}`, string(quote.Breakdown))
	assert.Equal(t, "Estes", quote.Carrier)
	assert.Equal(t, "EXLA", quote.SCAC)
}

func TestNormalizeQuoteCheapestTieKeepsFirst(t *testing.T) {
	c := newTestClient(t, Config{})

	quote := c.NormalizeQuote(response(200, `{"data":[
		{"quoteId":"A","quoteRate":{"total":"1,000.00"}},
		{"quoteId":"B","quoteRate":{"total":1000}}
	]}`))

	require.True(t, quote.Priced())
	assert.Equal(t, "A", quote.QuoteNumber)
}

func TestNormalizeQuoteShapes(t *testing.T) {
	c := newTestClient(t, Config{})

	tests := []struct {
		name      string
		body      string
		total     float64
		breakdown string
		quoteID   string
	}{
		{
			name:      "top level charges",
			body:      `{"quoteId":"C1","charges":{"total":"$212.40","fuel":20}}`,
			total:     212.40,
			breakdown: `{"total":"$212.40","fuel":20}`,
			quoteID:   "C1",
		},
		{
			name:      "charges totalCharges",
			body:      `{"charges":{"totalCharges":99}}`,
			total:     99,
			breakdown: `{"totalCharges":99}`,
		},
		{
			name:      "top level quoteRate",
			body:      `{"quoteNumber":"R9","quoteRate":{"totalCharges":"1,204.10"}}`,
			total:     1204.10,
			breakdown: `{"totalCharges":"1,204.10"}`,
			quoteID:   "R9",
		},
		{
			name:      "bare array",
			body:      `[{"quoteId":"B1","quoteRate":{"total":"300"}},{"quoteId":"B2","quoteRate":{"total":"100"}}]`,
			total:     300,
			breakdown: `{"total":"300"}`,
			quoteID:   "B1",
		},
		{
			name:      "last resort total",
			body:      `{"quoteId":"L1","totalCharges":"77.70","misc":true}`,
			total:     77.70,
			breakdown: `{"quoteId":"L1","totalCharges":"77.70","misc":true}`,
			quoteID:   "L1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := c.NormalizeQuote(response(200, tt.body))
			require.True(t, quote.Priced())
			assert.InDelta(t, tt.total, *quote.Total, 1e-9)
			assert.JSONEq(t, tt.breakdown, string(quote.Breakdown))
			assert.Equal(t, tt.quoteID, quote.QuoteNumber)
		})
	}
}

func TestNormalizeQuoteDegradesWhenUnrecognised(t *testing.T) {
	c := newTestClient(t, Config{})

	quote := c.NormalizeQuote(response(200, `{"quoteId":"X1","status":"pending"}`))

	assert.False(t, quote.Priced())
	assert.Nil(t, quote.Total)
	assert.Equal(t, "X1", quote.QuoteNumber)
	assert.JSONEq(t, `{"quoteId":"X1","status":"pending"}`, string(quote.Breakdown))

	quote = c.NormalizeQuote(response(200, `<html>oops</html>`))
	assert.False(t, quote.Priced())
	assert.JSONEq(t, `"<html>oops</html>"`, string(quote.Breakdown))
}

func TestRatesNotFound(t *testing.T) {
	c := newTestClient(t, Config{})

	tests := []struct {
		name string
		resp *domain.CarrierResponse
		want bool
	}{
		{"status 422", response(422, `{}`), true},
		{"error code under 200", response(200, `{"error":{"code":70020}}`), true},
		{"string code", response(400, `{"code":"70020"}`), true},
		{"GSC message id", response(400, `{"error":{"information":[{"messageId":"GSC1234","message":"Lane not serviced"}]}}`), true},
		{"top level GSC", response(400, `{"information":[{"messageId":"gsc-9"}]}`), true},
		{"message text", response(200, `{"error":{"message":"Rates Not Found for lane"}}`), true},
		{"empty data", response(200, `{"data":[]}`), true},
		{"priced", response(200, `{"data":[{"quoteRate":{"total":10}}]}`), false},
		{"other error", response(400, `{"error":{"code":10001,"message":"Invalid date"}}`), false},
		{"empty data on failure", response(500, `{"data":[]}`), false},
		{"not json", response(502, `Bad Gateway`), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.RatesNotFound(tt.resp))
		})
	}
}
