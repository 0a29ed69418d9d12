package application

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/pkg/errors"
)

// PayloadNormalizer turns either inbound payload shape into a reconciled
// ShipmentEnvelope
type PayloadNormalizer struct {
	defaults domain.Defaults
	schema   *jsonschema.Schema
	now      func() time.Time
}

// NewPayloadNormalizer creates a normalizer. A nil clock uses time.Now.
func NewPayloadNormalizer(defaults domain.Defaults, now func() time.Time) (*PayloadNormalizer, error) {
	schema, err := compilePayloadSchema()
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &PayloadNormalizer{defaults: defaults, schema: schema, now: now}, nil
}

// Normalize decodes, validates and reconciles an inbound quote payload.
// Every failure is a validation AppError.
func (n *PayloadNormalizer) Normalize(body []byte) (*domain.ShipmentEnvelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.ErrValidation("request body is required")
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, errors.ErrValidation("request body is not valid JSON").Wrap(err)
	}
	if err := n.schema.Validate(doc); err != nil {
		return nil, errors.ErrValidation("request body has an unexpected shape").
			WithDetail("schema", err.Error())
	}

	payload := object(decodeLoose(body))
	if payload == nil {
		return nil, errors.ErrValidation("request body must be a JSON object")
	}

	var env *domain.ShipmentEnvelope
	if qr := object(payload["quoteRequest"]); qr != nil {
		env, err = n.fromQuoteRequest(payload, qr)
	} else {
		env, err = n.fromCheckout(payload)
	}
	if err != nil {
		return nil, err
	}

	if err := n.finish(env); err != nil {
		return nil, err
	}
	return env, nil
}

// decodeLoose decodes with float64 numbers for the coercion helpers
func decodeLoose(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

// fromQuoteRequest handles a client that already built a near-final
// request. Origin and destination may sit beside quoteRequest instead of
// inside it.
func (n *PayloadNormalizer) fromQuoteRequest(payload, qr map[string]any) (*domain.ShipmentEnvelope, error) {
	originRaw := object(qr["origin"])
	if originRaw == nil {
		originRaw = object(payload["origin"])
	}
	destRaw := object(qr["destination"])
	if destRaw == nil {
		destRaw = object(payload["destination"])
	}

	env := &domain.ShipmentEnvelope{
		ShipDate:      str(qr["shipDate"]),
		ShipTime:      str(first(qr, "shipTime")),
		ServiceLevels: stringList(qr["serviceLevels"]),
		Origin:        n.parseAddress(originRaw),
		Destination:   n.parseAddress(destRaw),
		Accessorials:  accessorialCodes(first(qr, "accessorials")),
	}
	if env.ShipTime == "" {
		env.ShipTime = str(payload["shipTime"])
	}
	if env.Accessorials == nil {
		env.Accessorials = accessorialCodes(payload["accessorials"])
	}

	if env.ShipDate == "" || env.Origin.PostalCode == "" || env.Destination.PostalCode == "" {
		return nil, domain.ErrIncompleteQuoteRequest()
	}
	if _, err := time.Parse(time.DateOnly, env.ShipDate); err != nil {
		return nil, domain.ErrIncompleteQuoteRequest().WithDetail("shipDate", "must be YYYY-MM-DD")
	}

	units := array(object(qr["commodity"])["handlingUnits"])
	if units == nil {
		units = array(qr["handlingUnits"])
	}
	for _, raw := range units {
		if hu := object(raw); hu != nil {
			env.HandlingUnits = append(env.HandlingUnits, n.parseHandlingUnit(hu))
		}
	}
	if len(env.HandlingUnits) == 0 {
		env.HandlingUnits = []domain.HandlingUnit{n.defaultHandlingUnit(payload)}
	}

	env.Payment = n.parsePayment(object(payload["payment"]), object(qr["payment"]))
	env.Requestor = n.parseRequestor(object(payload["requestor"]), object(qr["requestor"]))
	return env, nil
}

// fromCheckout builds one handling unit holding every cart item, shipped
// today from the warehouse origin
func (n *PayloadNormalizer) fromCheckout(payload map[string]any) (*domain.ShipmentEnvelope, error) {
	checkout := object(payload["checkout"])

	destRaw := object(checkout["destination"])
	if destRaw == nil {
		destRaw = object(payload["destination"])
	}
	dest := n.parseAddress(destRaw)
	if dest.PostalCode == "" {
		return nil, domain.ErrMissingDestinationPostal()
	}

	items := array(checkout["items"])
	if items == nil {
		items = array(payload["items"])
	}

	hu := n.defaultHandlingUnit(payload)
	for _, raw := range items {
		if item := object(raw); item != nil {
			hu.LineItems = append(hu.LineItems, n.parseLineItem(item))
		}
	}

	return &domain.ShipmentEnvelope{
		ShipDate:      n.now().Format(time.DateOnly),
		ShipTime:      str(payload["shipTime"]),
		Origin:        n.defaults.Origin,
		Destination:   dest,
		HandlingUnits: []domain.HandlingUnit{hu},
		Accessorials:  accessorialCodes(payload["accessorials"]),
		Payment:       n.parsePayment(object(payload["payment"])),
		Requestor:     n.parseRequestor(object(payload["requestor"])),
	}, nil
}

// finish applies the rules shared by both payload shapes
func (n *PayloadNormalizer) finish(env *domain.ShipmentEnvelope) error {
	env.Origin.Address1 = expandStreetSuffixes(env.Origin.Address1)
	env.Destination.Address1 = expandStreetSuffixes(env.Destination.Address1)

	if env.ShipTime != "" {
		env.ShipTime = normalizeShipTime(env.ShipTime)
	}
	if len(env.ServiceLevels) == 0 {
		env.ServiceLevels = append([]string(nil), n.defaults.ServiceLevels...)
	}
	if len(env.Accessorials) == 0 {
		env.Accessorials = nil
	}
	if env.Payment.Account == "" {
		env.Payment.Account = n.defaults.Payment.Account
	}

	env.Reconcile()
	return env.CheckWeights()
}

func (n *PayloadNormalizer) defaultHandlingUnit(payload map[string]any) domain.HandlingUnit {
	d := n.defaults
	return domain.HandlingUnit{
		Count:          1,
		Type:           d.HandlingUnitType,
		Weight:         numberOr(payload["weight"], 0),
		TareWeight:     d.TareWeight,
		WeightUnit:     d.WeightUnit,
		Length:         numberOr(payload["length"], d.Length),
		Width:          numberOr(payload["width"], d.Width),
		Height:         numberOr(payload["height"], d.Height),
		DimensionsUnit: d.DimensionsUnit,
		IsStackable:    d.IsStackable,
		IsTurnable:     d.IsTurnable,
	}
}

func (n *PayloadNormalizer) parseHandlingUnit(m map[string]any) domain.HandlingUnit {
	d := n.defaults
	hu := domain.HandlingUnit{
		Count:          intOr(m["count"], 1),
		Type:           orDefault(firstString(m, "type", "handlingUnitType"), d.HandlingUnitType),
		Weight:         numberOr(m["weight"], 0),
		TareWeight:     numberOr(m["tareWeight"], d.TareWeight),
		WeightUnit:     orDefault(firstString(m, "weightUnit"), d.WeightUnit),
		Length:         numberOr(m["length"], d.Length),
		Width:          numberOr(m["width"], d.Width),
		Height:         numberOr(m["height"], d.Height),
		DimensionsUnit: orDefault(firstString(m, "dimensionsUnit"), d.DimensionsUnit),
		IsStackable:    boolOr(m["isStackable"], d.IsStackable),
		IsTurnable:     boolOr(m["isTurnable"], d.IsTurnable),
	}
	for _, raw := range array(m["lineItems"]) {
		if item := object(raw); item != nil {
			hu.LineItems = append(hu.LineItems, n.parseLineItem(item))
		}
	}
	return hu
}

func (n *PayloadNormalizer) parseLineItem(m map[string]any) domain.LineItem {
	return domain.LineItem{
		Description:    orDefault(firstString(m, "description", "name", "title", "sku"), "Freight"),
		Weight:         numberOr(m["weight"], 0),
		Pieces:         intOr(first(m, "pieces", "quantity", "qty"), 1),
		PackagingType:  orDefault(firstString(m, "packagingType"), n.defaults.PackagingType),
		Classification: orDefault(firstString(m, "classification", "freightClass", "class"), n.defaults.Classification),
		NMFC:           firstString(m, "nmfc"),
		NMFCSub:        firstString(m, "nmfcSub"),
		IsHazardous:    boolOr(first(m, "isHazardous", "hazardous"), false),
	}
}

// parseAddress reads an address whose street fields may be nested under
// an "address" object
func (n *PayloadNormalizer) parseAddress(m map[string]any) domain.Address {
	if m == nil {
		return domain.Address{}
	}
	nested := object(m["address"])
	get := func(keys ...string) string {
		if s := firstString(m, keys...); s != "" {
			return s
		}
		return firstString(nested, keys...)
	}

	contactRaw := object(m["contact"])
	contact := domain.Contact{
		Name:     orDefault(firstString(contactRaw, "name"), get("contactName")),
		Phone:    orDefault(firstString(contactRaw, "phone"), get("phone")),
		PhoneExt: orDefault(firstString(contactRaw, "phoneExt", "extension"), get("phoneExt")),
		Email:    orDefault(firstString(contactRaw, "email"), get("email")),
	}

	return domain.Address{
		Name:          get("name", "company", "companyName"),
		LocationID:    get("locationId"),
		Address1:      get("address1", "street", "line1"),
		Address2:      get("address2", "line2"),
		City:          get("city"),
		StateProvince: get("stateProvince", "state", "province"),
		PostalCode:    get("postalCode", "postal", "zip"),
		Country:       orDefault(get("country"), n.defaults.Country),
		Contact:       contact,
	}
}

// parsePayment takes each field from the first source that has it
func (n *PayloadNormalizer) parsePayment(sources ...map[string]any) domain.Payment {
	p := n.defaults.Payment
	p.Account = pick(sources, "account", p.Account)
	p.Payor = pick(sources, "payor", p.Payor)
	p.Terms = pick(sources, "terms", p.Terms)
	return p
}

func (n *PayloadNormalizer) parseRequestor(sources ...map[string]any) domain.Requestor {
	r := n.defaults.Requestor
	r.Name = pick(sources, "name", r.Name)
	r.Phone = pick(sources, "phone", r.Phone)
	r.Email = pick(sources, "email", r.Email)
	return r
}

func pick(sources []map[string]any, key, fallback string) string {
	for _, m := range sources {
		if s := firstString(m, key); s != "" {
			return s
		}
	}
	return fallback
}

// accessorialCodes accepts ["LGATE"] or {"codes": ["LGATE"]}
func accessorialCodes(v any) []string {
	if m := object(v); m != nil {
		return stringList(m["codes"])
	}
	return stringList(v)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
