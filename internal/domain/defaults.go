package domain

// Defaults gathers every value the normalizer fills in when the inbound
// payload leaves it out
type Defaults struct {
	Classification   string    `yaml:"classification" validate:"required"`
	TareWeight       float64   `yaml:"tareWeight" validate:"gte=0"`
	WeightUnit       string    `yaml:"weightUnit" validate:"required"`
	DimensionsUnit   string    `yaml:"dimensionsUnit" validate:"required"`
	HandlingUnitType string    `yaml:"handlingUnitType" validate:"required"`
	PackagingType    string    `yaml:"packagingType" validate:"required"`
	Length           float64   `yaml:"length" validate:"gte=0"`
	Width            float64   `yaml:"width" validate:"gte=0"`
	Height           float64   `yaml:"height" validate:"gte=0"`
	IsStackable      bool      `yaml:"isStackable"`
	IsTurnable       bool      `yaml:"isTurnable"`
	ServiceLevels    []string  `yaml:"serviceLevels" validate:"required,min=1"`
	Country          string    `yaml:"country" validate:"required"`
	Origin           Address   `yaml:"origin"`
	Payment          Payment   `yaml:"payment"`
	Requestor        Requestor `yaml:"requestor"`
}

// DefaultDefaults returns the built-in defaults for the AgEx Parts warehouse
func DefaultDefaults() Defaults {
	return Defaults{
		Classification:   "92.5",
		TareWeight:       10,
		WeightUnit:       "Pounds",
		DimensionsUnit:   "Inches",
		HandlingUnitType: "PAT",
		PackagingType:    "PAT",
		Length:           48,
		Width:            40,
		Height:           48,
		IsStackable:      false,
		IsTurnable:       true,
		ServiceLevels:    []string{"ALL"},
		Country:          "US",
		Origin: Address{
			Name:          "AgEx Parts",
			Address1:      "1500 E Broadway St",
			City:          "Lubbock",
			StateProvince: "TX",
			PostalCode:    "79403",
			Country:       "US",
			Contact: Contact{
				Name:  "Shipping Dept",
				Phone: "8065550100",
				Email: "shipping@agexparts.com",
			},
		},
		Payment: Payment{
			Payor: "Shipper",
			Terms: "Prepaid",
		},
		Requestor: Requestor{
			Name:  "AgEx Parts Shipping",
			Phone: "8065550100",
			Email: "shipping@agexparts.com",
		},
	}
}
