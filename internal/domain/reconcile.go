package domain

import "math"

// MaxHandlingUnitWeight is the heaviest gross weight, in pounds, accepted for
// a single handling unit
const MaxHandlingUnitWeight = 1_000_000

// Reconcile coerces handling unit and line item quantities into range and
// recomputes every aggregate. Running it on its own output changes nothing.
//
// An explicit non-zero handling unit weight wins. Otherwise the weight is
// derived from Σ(lineItem.weight × pieces) and the unit is marked
// WeightDerived so later passes keep deriving it.
func (e *ShipmentEnvelope) Reconcile() {
	var (
		weight    float64
		tare      float64
		pieces    int
		count     int
		itemCount int
	)

	for i := range e.HandlingUnits {
		hu := &e.HandlingUnits[i]

		if hu.Count < 1 {
			hu.Count = 1
		}
		hu.TareWeight = nonNegative(hu.TareWeight)
		hu.Weight = nonNegative(hu.Weight)

		var itemsWeight float64
		for j := range hu.LineItems {
			li := &hu.LineItems[j]
			if li.Pieces < 1 {
				li.Pieces = 1
			}
			li.Weight = nonNegative(li.Weight)
			itemsWeight += li.Weight * float64(li.Pieces)
			pieces += li.Pieces
			itemCount++
		}

		if hu.Weight == 0 || hu.WeightDerived {
			hu.Weight = itemsWeight
			hu.WeightDerived = true
		}

		weight += hu.Weight
		tare += hu.TareWeight
		count += hu.Count
	}

	e.TotalShipmentWeight = max(1, CeilPounds(weight+tare))
	if itemCount > 0 {
		e.TotalPieces = pieces
	} else {
		e.TotalPieces = count
	}
}

// GrossWeight is the weight reported to the carrier for the unit. A derived
// weight excludes packaging, so tare is added; an explicit weight is taken
// as already gross.
func (hu HandlingUnit) GrossWeight() float64 {
	if hu.WeightDerived {
		return hu.Weight + hu.TareWeight
	}
	return hu.Weight
}

// CeilPounds rounds a weight up to whole pounds, clamped to [0, MaxInt32]
// so absurd inputs cannot wrap negative
func CeilPounds(w float64) int {
	switch {
	case math.IsNaN(w) || w <= 0:
		return 0
	case w >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Ceil(w))
}

// CheckWeights rejects handling units heavier than MaxHandlingUnitWeight.
// Call it after Reconcile.
func (e *ShipmentEnvelope) CheckWeights() error {
	for i, hu := range e.HandlingUnits {
		if hu.GrossWeight() > MaxHandlingUnitWeight {
			return ErrHandlingUnitTooHeavy(i)
		}
	}
	return nil
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
