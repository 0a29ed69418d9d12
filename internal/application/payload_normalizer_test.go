package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestNormalizer(t *testing.T) *PayloadNormalizer {
	t.Helper()
	defaults := domain.DefaultDefaults()
	defaults.Payment.Account = "0123456"
	n, err := NewPayloadNormalizer(defaults, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return n
}

func requireValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestNormalizeCheckoutPayload(t *testing.T) {
	n := newTestNormalizer(t)

	env, err := n.Normalize([]byte(`{
		"checkout": {
			"destination": {
				"name": "Plains Co-op",
				"address1": "200 Mill Rd.",
				"city": "Amarillo",
				"state": "TX",
				"postalCode": "79101"
			},
			"items": [
				{"name": "Disc blade", "weight": "45.5", "quantity": 2},
				{"name": "Hitch pin", "weight": 10, "classification": "70", "hazardous": "yes"}
			]
		},
		"shipTime": "9:5",
		"accessorials": {"codes": ["LGATE"]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-14", env.ShipDate)
	assert.Equal(t, "09:05", env.ShipTime)
	assert.Equal(t, []string{"ALL"}, env.ServiceLevels)
	assert.Equal(t, "79403", env.Origin.PostalCode)
	assert.Equal(t, "1500 E Broadway Street", env.Origin.Address1)
	assert.Equal(t, "200 Mill Road", env.Destination.Address1)
	assert.Equal(t, "TX", env.Destination.StateProvince)
	assert.Equal(t, "US", env.Destination.Country)
	assert.Equal(t, []string{"LGATE"}, env.Accessorials)
	assert.Equal(t, "0123456", env.Payment.Account)
	assert.Equal(t, "Shipper", env.Payment.Payor)

	require.Len(t, env.HandlingUnits, 1)
	hu := env.HandlingUnits[0]
	assert.Equal(t, "PAT", hu.Type)
	assert.InDelta(t, 101.0, hu.Weight, 1e-9)
	assert.True(t, hu.WeightDerived)
	require.Len(t, hu.LineItems, 2)
	assert.Equal(t, 2, hu.LineItems[0].Pieces)
	assert.Equal(t, "92.5", hu.LineItems[0].Classification)
	assert.Equal(t, "70", hu.LineItems[1].Classification)
	assert.True(t, hu.LineItems[1].IsHazardous)

	assert.Equal(t, 111, env.TotalShipmentWeight)
	assert.Equal(t, 3, env.TotalPieces)
}

func TestNormalizeCheckoutPostalVariants(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		body string
	}{
		{"postalCode", `{"checkout":{"destination":{"postalCode":"79101"}}}`},
		{"nested address", `{"checkout":{"destination":{"address":{"postalCode":"79101"}}}}`},
		{"postal", `{"checkout":{"destination":{"postal":"79101"}}}`},
		{"top level destination", `{"destination":{"postal":"79101"},"items":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := n.Normalize([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "79101", env.Destination.PostalCode)
		})
	}
}

func TestNormalizeRejectsMissingDestinationPostal(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize([]byte(`{"checkout":{"destination":{"city":"Amarillo"},"items":[{"weight":5}]}}`))
	requireValidationError(t, err, "missing destination postal code")
}

func TestNormalizeQuoteRequestPayload(t *testing.T) {
	n := newTestNormalizer(t)

	env, err := n.Normalize([]byte(`{
		"quoteRequest": {
			"shipDate": "2026-03-20",
			"shipTime": "14:30",
			"serviceLevels": ["LTL"],
			"commodity": {
				"handlingUnits": [
					{"count": 2, "weight": 600, "tareWeight": 40, "lineItems": [{"weight": 100, "pieces": 4}]}
				]
			},
			"accessorials": []
		},
		"origin": {"address1": "12 Oak Dr", "city": "Lubbock", "postalCode": "79403"},
		"destination": {"city": "Dallas", "postalCode": "75201"},
		"payment": {"account": "999", "terms": "Collect"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-20", env.ShipDate)
	assert.Equal(t, "14:30", env.ShipTime)
	assert.Equal(t, []string{"LTL"}, env.ServiceLevels)
	assert.Equal(t, "12 Oak Drive", env.Origin.Address1)
	assert.Equal(t, "75201", env.Destination.PostalCode)
	assert.Nil(t, env.Accessorials)
	assert.Equal(t, domain.Payment{Account: "999", Payor: "Shipper", Terms: "Collect"}, env.Payment)

	require.Len(t, env.HandlingUnits, 1)
	assert.Equal(t, 2, env.HandlingUnits[0].Count)
	assert.InDelta(t, 600.0, env.HandlingUnits[0].Weight, 1e-9)
	assert.False(t, env.HandlingUnits[0].WeightDerived)
	assert.Equal(t, 640, env.TotalShipmentWeight)
	assert.Equal(t, 4, env.TotalPieces)
}

func TestNormalizeIncompleteQuoteRequest(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing ship date", `{"quoteRequest":{"origin":{"postalCode":"79403"},"destination":{"postalCode":"75201"}}}`},
		{"missing origin postal", `{"quoteRequest":{"shipDate":"2026-03-20","destination":{"postalCode":"75201"}}}`},
		{"missing destination postal", `{"quoteRequest":{"shipDate":"2026-03-20","origin":{"postalCode":"79403"}}}`},
		{"ship date not a date", `{"quoteRequest":{"shipDate":"tomorrow","origin":{"postalCode":"79403"},"destination":{"postalCode":"75201"}}}`},
		{"ship date with time", `{"quoteRequest":{"shipDate":"2026-03-20T08:00:00Z","origin":{"postalCode":"79403"},"destination":{"postalCode":"75201"}}}`},
		{"ship date out of range", `{"quoteRequest":{"shipDate":"2026-02-30","origin":{"postalCode":"79403"},"destination":{"postalCode":"75201"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize([]byte(tt.body))
			requireValidationError(t, err, "incomplete quoteRequest")
		})
	}
}

func TestNormalizeRejectsOverweightHandlingUnit(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		body string
	}{
		{"checkout weight", `{"checkout":{"destination":{"postalCode":"79101"}},"weight":1e19}`},
		{"quoteRequest unit weight", `{"quoteRequest":{"shipDate":"2026-03-20","origin":{"postalCode":"79403"},"destination":{"postalCode":"75201"},
			"handlingUnits":[{"weight":2000000}]}}`},
		{"line items multiply past the limit", `{"checkout":{"destination":{"postalCode":"79101"}},
			"items":[{"sku":"AX-1","weight":600000,"quantity":2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize([]byte(tt.body))
			requireValidationError(t, err, "")
			appErr, _ := errors.AsAppError(err)
			assert.Contains(t, appErr.Message, "exceeds 1000000 lb")
		})
	}
}

func TestNormalizeShipTime(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		input string
		want  string
	}{
		{"9:5", "09:05"},
		{"25:99", ""},
		{"23:59", "23:59"},
		{"07:30:00", "07:30"},
		{" 7:30 PM", "19:30"},
		{"12:00am", "00:00"},
		{"12:15 pm", "12:15"},
		{"11:59 p.m.", "23:59"},
		{"13:00 PM", ""},
		{"0:30 am", ""},
		{"7:30 tomorrow", ""},
		{"noon", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := n.Normalize([]byte(`{"checkout":{"destination":{"postalCode":"79101"}},"shipTime":"` + tt.input + `"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.ShipTime)
		})
	}
}

func TestNormalizeRejectsMalformedBodies(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"not json", `{"checkout":`},
		{"array", `[1,2,3]`},
		{"items not objects", `{"checkout":{"destination":{"postalCode":"79101"},"items":["bolt"]}}`},
		{"handling units not array", `{"quoteRequest":{"shipDate":"2026-03-20","commodity":{"handlingUnits":"pallet"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize([]byte(tt.body))
			requireValidationError(t, err, "")
		})
	}
}

func TestExpandStreetSuffixes(t *testing.T) {
	assert.Equal(t, "100 Main Street", expandStreetSuffixes("100 Main St"))
	assert.Equal(t, "100 Main Street Apt 4", expandStreetSuffixes("100 Main St. Apt 4"))
	assert.Equal(t, "9 County Road 7", expandStreetSuffixes("9 County RD 7"))
	assert.Equal(t, "5 Stone Drive", expandStreetSuffixes("5 Stone dr"))
	assert.Equal(t, "Stanford Ave", expandStreetSuffixes("Stanford Ave"))
}

func TestToNumberStripsFormatting(t *testing.T) {
	tests := []struct {
		input any
		want  float64
		ok    bool
	}{
		{"$1,234.50", 1234.5, true},
		{"360.52", 360.52, true},
		{float64(500), 500, true},
		{"USD", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := toNumber(tt.input)
		assert.Equal(t, tt.ok, ok, "input %v", tt.input)
		assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.input)
	}
}
