package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSameLocation is returned by resolvers asked for the distance between a
// location and itself
var ErrSameLocation = errors.New("departure and arrival are the same location")

// Travel is a reimbursable journey priced per kilometre
type Travel struct {
	DepartureLocation string  `json:"departure_location"`
	ArrivalLocation   string  `json:"arrival_location"`
	DistanceKm        float64 `json:"distance_km"` // 0 means not yet resolved
}

func (t *Travel) Kind() Kind { return KindTravel }

// Amount returns distance * pricePerKm
func (t *Travel) Amount(pricePerKm float64) float64 {
	return roundCents(t.DistanceKm * pricePerKm)
}

// LocalValidity requires both locations and a resolved positive distance
func (t *Travel) LocalValidity() error {
	if err := t.checkLocations(); err != nil {
		return err
	}
	if t.DistanceKm <= 0 {
		return NewValidationError("", "distance_km", "distance must be resolved and positive")
	}
	return nil
}

func (t *Travel) resolve(ctx context.Context, resolver DistanceResolver) error {
	if err := t.checkLocations(); err != nil {
		return err
	}
	if resolver == nil {
		return NewValidationError("", "distance_km", "distance is unset and no resolver is available")
	}
	km, err := resolver.ResolveDistanceKm(ctx, t.DepartureLocation, t.ArrivalLocation)
	if errors.Is(err, ErrSameLocation) {
		verr := NewValidationError("", "distance_km", err.Error())
		verr.Err = err
		return verr
	}
	if err != nil {
		return fmt.Errorf("resolve distance %s -> %s: %w", t.DepartureLocation, t.ArrivalLocation, err)
	}
	if km <= 0 {
		return NewValidationError("", "distance_km", fmt.Sprintf("resolved distance %.1f km is not positive", km))
	}
	t.DistanceKm = km
	return nil
}

func (t *Travel) checkLocations() error {
	if strings.TrimSpace(t.DepartureLocation) == "" {
		return NewValidationError("", "departure_location", "departure location is required")
	}
	if strings.TrimSpace(t.ArrivalLocation) == "" {
		return NewValidationError("", "arrival_location", "arrival location is required")
	}
	return nil
}

func (t *Travel) clone() Details {
	c := *t
	return &c
}
