package domain

import "slices"

// ShipmentEnvelope is the canonical quote request: where the freight moves,
// what it is, and who pays
type ShipmentEnvelope struct {
	ShipDate      string         `json:"shipDate"`
	ShipTime      string         `json:"shipTime,omitempty"`
	ServiceLevels []string       `json:"serviceLevels"`
	Origin        Address        `json:"origin"`
	Destination   Address        `json:"destination"`
	HandlingUnits []HandlingUnit `json:"handlingUnits"`
	Accessorials  []string       `json:"accessorials,omitempty"`
	Payment       Payment        `json:"payment"`
	Requestor     Requestor      `json:"requestor"`

	// Derived by Reconcile
	TotalShipmentWeight int `json:"totalShipmentWeight"`
	TotalPieces         int `json:"totalPieces"`
}

// Address is a pickup or delivery location
type Address struct {
	Name          string  `json:"name,omitempty" yaml:"name"`
	LocationID    string  `json:"locationId,omitempty" yaml:"locationId"`
	Address1      string  `json:"address1,omitempty" yaml:"address1"`
	Address2      string  `json:"address2,omitempty" yaml:"address2"`
	City          string  `json:"city,omitempty" yaml:"city"`
	StateProvince string  `json:"stateProvince,omitempty" yaml:"stateProvince"`
	PostalCode    string  `json:"postalCode" yaml:"postalCode" validate:"required"`
	Country       string  `json:"country,omitempty" yaml:"country"`
	Contact       Contact `json:"contact" yaml:"contact"`
}

// Contact is the person reachable at an address
type Contact struct {
	Name     string `json:"name,omitempty" yaml:"name"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	PhoneExt string `json:"phoneExt,omitempty" yaml:"phoneExt"`
	Email    string `json:"email,omitempty" yaml:"email"`
}

// HandlingUnit is one physical freight unit such as a pallet or crate
type HandlingUnit struct {
	Count          int        `json:"count"`
	Type           string     `json:"type"`
	Weight         float64    `json:"weight"`
	TareWeight     float64    `json:"tareWeight"`
	WeightUnit     string     `json:"weightUnit"`
	Length         float64    `json:"length,omitempty"`
	Width          float64    `json:"width,omitempty"`
	Height         float64    `json:"height,omitempty"`
	DimensionsUnit string     `json:"dimensionsUnit,omitempty"`
	IsStackable    bool       `json:"isStackable"`
	IsTurnable     bool       `json:"isTurnable"`
	LineItems      []LineItem `json:"lineItems"`

	// WeightDerived is set once Weight has been computed from the line items
	WeightDerived bool `json:"weightDerived,omitempty"`
}

// LineItem is a commodity line inside a handling unit
type LineItem struct {
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	Pieces         int     `json:"pieces"`
	PackagingType  string  `json:"packagingType"`
	Classification string  `json:"classification"`
	NMFC           string  `json:"nmfc,omitempty"`
	NMFCSub        string  `json:"nmfcSub,omitempty"`
	IsHazardous    bool    `json:"isHazardous"`
}

// Payment identifies the billed account
type Payment struct {
	Account string `json:"account" yaml:"account"`
	Payor   string `json:"payor" yaml:"payor"`
	Terms   string `json:"terms" yaml:"terms"`
}

// Requestor is the contact making the quote request
type Requestor struct {
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
	Email string `json:"email" yaml:"email"`
}

// Clone returns a deep copy of the envelope
func (e *ShipmentEnvelope) Clone() *ShipmentEnvelope {
	c := *e
	c.ServiceLevels = slices.Clone(e.ServiceLevels)
	c.Accessorials = slices.Clone(e.Accessorials)
	c.HandlingUnits = slices.Clone(e.HandlingUnits)
	for i := range c.HandlingUnits {
		c.HandlingUnits[i].LineItems = slices.Clone(c.HandlingUnits[i].LineItems)
	}
	return &c
}

// ZipOnly returns a copy with both city fields blanked so the carrier
// matches on postal code alone
func (e *ShipmentEnvelope) ZipOnly() *ShipmentEnvelope {
	c := e.Clone()
	c.Origin.City = ""
	c.Destination.City = ""
	return c
}
