package estes

import "github.com/agexparts/freight-service/internal/domain"

// rateRequest is the body posted to the rates endpoint. Origin and
// destination are repeated beside quoteRequest because the carrier rejects
// some requests that only carry them nested.
type rateRequest struct {
	QuoteRequest quoteRequest `json:"quoteRequest"`
	Payment      payment      `json:"payment"`
	Requestor    requestor    `json:"requestor"`
	Origin       party        `json:"origin"`
	Destination  party        `json:"destination"`
}

type quoteRequest struct {
	ShipDate      string        `json:"shipDate"`
	ShipTime      string        `json:"shipTime,omitempty"`
	ServiceLevels []string      `json:"serviceLevels"`
	Payment       payment       `json:"payment"`
	Requestor     requestor     `json:"requestor"`
	Origin        party         `json:"origin"`
	Destination   party         `json:"destination"`
	Commodity     commodity     `json:"commodity"`
	Accessorials  *accessorials `json:"accessorials,omitempty"`
}

type party struct {
	Name       string  `json:"name,omitempty"`
	LocationID string  `json:"locationId,omitempty"`
	Address    address `json:"address"`
	Contact    contact `json:"contact"`
}

// address keeps city without omitempty so a ZIP-only retry sends it blank
type address struct {
	Address1      string `json:"address1,omitempty"`
	Address2      string `json:"address2,omitempty"`
	City          string `json:"city"`
	StateProvince string `json:"stateProvince,omitempty"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country,omitempty"`
}

type contact struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhoneExt string `json:"phoneExt,omitempty"`
	Email    string `json:"email,omitempty"`
}

type payment struct {
	Account string `json:"account"`
	Payor   string `json:"payor"`
	Terms   string `json:"terms"`
}

type requestor struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type commodity struct {
	HandlingUnits       []handlingUnit `json:"handlingUnits"`
	TotalShipmentWeight int            `json:"totalShipmentWeight"`
	TotalPieces         int            `json:"totalPieces"`
}

type handlingUnit struct {
	Count          int        `json:"count"`
	Type           string     `json:"type"`
	Weight         int        `json:"weight"`
	TareWeight     float64    `json:"tareWeight"`
	WeightUnit     string     `json:"weightUnit"`
	Length         float64    `json:"length,omitempty"`
	Width          float64    `json:"width,omitempty"`
	Height         float64    `json:"height,omitempty"`
	DimensionsUnit string     `json:"dimensionsUnit,omitempty"`
	IsStackable    bool       `json:"isStackable"`
	IsTurnable     bool       `json:"isTurnable"`
	LineItems      []lineItem `json:"lineItems"`
}

type lineItem struct {
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	Pieces         int     `json:"pieces"`
	PackagingType  string  `json:"packagingType"`
	Classification string  `json:"classification"`
	NMFC           string  `json:"nmfc,omitempty"`
	NMFCSub        string  `json:"nmfcSub,omitempty"`
	IsHazardous    bool    `json:"isHazardous"`
}

type accessorials struct {
	Codes []string `json:"codes"`
}

// newRateRequest maps a reconciled envelope onto the carrier's schema.
// Handling unit weight is reported gross and rounded up to whole pounds.
func newRateRequest(env *domain.ShipmentEnvelope) rateRequest {
	origin := toParty(env.Origin)
	destination := toParty(env.Destination)
	pay := payment(env.Payment)
	req := requestor(env.Requestor)

	qr := quoteRequest{
		ShipDate:      env.ShipDate,
		ShipTime:      env.ShipTime,
		ServiceLevels: env.ServiceLevels,
		Payment:       pay,
		Requestor:     req,
		Origin:        origin,
		Destination:   destination,
		Commodity: commodity{
			HandlingUnits:       make([]handlingUnit, 0, len(env.HandlingUnits)),
			TotalShipmentWeight: env.TotalShipmentWeight,
			TotalPieces:         env.TotalPieces,
		},
	}
	if len(env.Accessorials) > 0 {
		qr.Accessorials = &accessorials{Codes: env.Accessorials}
	}

	for _, hu := range env.HandlingUnits {
		unit := handlingUnit{
			Count:          hu.Count,
			Type:           hu.Type,
			Weight:         domain.CeilPounds(hu.GrossWeight()),
			TareWeight:     hu.TareWeight,
			WeightUnit:     hu.WeightUnit,
			Length:         hu.Length,
			Width:          hu.Width,
			Height:         hu.Height,
			DimensionsUnit: hu.DimensionsUnit,
			IsStackable:    hu.IsStackable,
			IsTurnable:     hu.IsTurnable,
			LineItems:      make([]lineItem, 0, len(hu.LineItems)),
		}
		for _, li := range hu.LineItems {
			unit.LineItems = append(unit.LineItems, lineItem(li))
		}
		qr.Commodity.HandlingUnits = append(qr.Commodity.HandlingUnits, unit)
	}

	return rateRequest{
		QuoteRequest: qr,
		Payment:      pay,
		Requestor:    req,
		Origin:       origin,
		Destination:  destination,
	}
}

func toParty(a domain.Address) party {
	return party{
		Name:       a.Name,
		LocationID: a.LocationID,
		Address: address{
			Address1:      a.Address1,
			Address2:      a.Address2,
			City:          a.City,
			StateProvince: a.StateProvince,
			PostalCode:    a.PostalCode,
			Country:       a.Country,
		},
		Contact: contact(a.Contact),
	}
}
