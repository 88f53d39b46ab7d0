package service

import "github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"

// Pricing holds the default price inputs used when a caller omits one
type Pricing struct {
	PricePerKm    float64
	PricePerNight float64
	MealBasePrice float64
}

// DefaultPricing returns the built-in price inputs
func DefaultPricing() Pricing {
	return Pricing{
		PricePerKm:    0.50,
		PricePerNight: 80,
		MealBasePrice: 20,
	}
}

// PriceFor returns the price input of a variant
func (p Pricing) PriceFor(kind entity.Kind) float64 {
	switch kind {
	case entity.KindTravel:
		return p.PricePerKm
	case entity.KindLodging:
		return p.PricePerNight
	case entity.KindMeal:
		return p.MealBasePrice
	default:
		return 0
	}
}
