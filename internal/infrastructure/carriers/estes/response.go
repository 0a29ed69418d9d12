package estes

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agexparts/freight-service/internal/domain"
)

const ratesNotFoundCode = "70020"

var ratesNotFoundMessage = regexp.MustCompile(`(?i)rates not found`)

// extraction is what a shape matcher pulls out of a rates response
type extraction struct {
	total            float64
	breakdown        any
	quoteNumber      string
	serviceLevelText string
	transitDays      *int
}

// shapeMatcher recognises one observed response layout
type shapeMatcher func(body any) (*extraction, bool)

// matchers are tried in order; the first match wins
var matchers = []shapeMatcher{
	matchCharges,
	matchQuoteRate,
	matchCheapestCandidate,
	matchBareArray,
	matchAnyTotal,
}

// RatesNotFound reports whether the carrier could not rate the lanes as
// addressed. The carrier sometimes says so under a 200.
func (c *Client) RatesNotFound(resp *domain.CarrierResponse) bool {
	if resp == nil {
		return false
	}
	if resp.Status == 422 {
		return true
	}

	body := object(decode(resp.Body))
	if body == nil {
		return false
	}
	errObj := object(body["error"])

	for _, code := range []any{body["code"], errObj["code"]} {
		if text(code) == ratesNotFoundCode {
			return true
		}
	}

	for _, info := range append(array(body["information"]), array(errObj["information"])...) {
		if strings.HasPrefix(strings.ToUpper(text(object(info)["messageId"])), "GSC") {
			return true
		}
	}

	for _, msg := range messages(body, errObj) {
		if ratesNotFoundMessage.MatchString(msg) {
			return true
		}
	}

	if !resp.Failed() {
		if data, ok := body["data"].([]any); ok && len(data) == 0 {
			return true
		}
	}
	return false
}

// NormalizeQuote extracts a priced quote from a successful response. When
// no matcher recognises the body the quote is returned unpriced with the
// raw body as its breakdown.
func (c *Client) NormalizeQuote(resp *domain.CarrierResponse) *domain.NormalizedQuote {
	quote := &domain.NormalizedQuote{
		Carrier: CarrierName,
		SCAC:    SCAC,
	}
	if resp == nil {
		return quote
	}

	body := decode(resp.Body)
	for _, match := range matchers {
		if ex, ok := match(body); ok {
			total := ex.total
			quote.Total = &total
			quote.QuoteNumber = ex.quoteNumber
			quote.ServiceLevelText = ex.serviceLevelText
			quote.TransitDays = ex.transitDays
			quote.Breakdown = marshalRaw(ex.breakdown)
			return quote
		}
	}

	quote.QuoteNumber = quoteNumberOf(object(body))
	quote.Breakdown = domain.RawJSON(resp.Body)
	return quote
}

func matchCharges(body any) (*extraction, bool) {
	obj := object(body)
	charges := object(obj["charges"])
	total, ok := amountOf(charges, "total", "totalCharges")
	if !ok {
		return nil, false
	}
	return describe(obj, total, charges), true
}

func matchQuoteRate(body any) (*extraction, bool) {
	obj := object(body)
	rate := object(obj["quoteRate"])
	total, ok := amountOf(rate, "totalCharges", "total")
	if !ok {
		return nil, false
	}
	return describe(obj, total, rate), true
}

// matchCheapestCandidate picks the lowest priced data[] entry. Ties keep
// the earlier entry.
func matchCheapestCandidate(body any) (*extraction, bool) {
	var best *extraction
	for _, raw := range array(object(body)["data"]) {
		candidate, ok := matchQuoteRate(raw)
		if !ok {
			continue
		}
		if best == nil || candidate.total < best.total {
			best = candidate
		}
	}
	return best, best != nil
}

func matchBareArray(body any) (*extraction, bool) {
	list, ok := body.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	return matchQuoteRate(list[0])
}

// matchAnyTotal is the last resort; the whole body becomes the breakdown
func matchAnyTotal(body any) (*extraction, bool) {
	obj := object(body)
	if obj == nil {
		return nil, false
	}
	total, ok := amountOf(obj, "total", "totalCharges")
	if !ok {
		total, ok = amountOf(object(obj["charges"]), "total", "totalCharges")
	}
	if !ok {
		return nil, false
	}
	return describe(obj, total, obj), true
}

func describe(obj map[string]any, total float64, breakdown any) *extraction {
	return &extraction{
		total:            total,
		breakdown:        breakdown,
		quoteNumber:      quoteNumberOf(obj),
		serviceLevelText: firstText(obj, "serviceLevelText", "serviceLevel"),
		transitDays:      transitDaysOf(obj),
	}
}

func quoteNumberOf(obj map[string]any) string {
	return firstText(obj, "quoteId", "quoteNumber", "quoteID")
}

func transitDaysOf(obj map[string]any) *int {
	v, ok := obj["transitDays"]
	if !ok {
		v = object(obj["transitDetails"])["transitDays"]
	}
	f, ok := domain.ParseAmount(v)
	if !ok {
		return nil
	}
	days := int(math.Round(f))
	return &days
}

func amountOf(obj map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := domain.ParseAmount(obj[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func messages(objs ...map[string]any) []string {
	var out []string
	for _, obj := range objs {
		for _, k := range []string{"message", "description", "detail"} {
			if s := text(obj[k]); s != "" {
				out = append(out, s)
			}
		}
		for _, info := range array(obj["information"]) {
			if s := text(object(info)["message"]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func decode(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

func marshalRaw(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func array(v any) []any {
	a, _ := v.([]any)
	return a
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func firstText(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
