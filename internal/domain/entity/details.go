package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Kind identifies an expense variant
type Kind string

const (
	KindTravel  Kind = "TRAVEL"
	KindLodging Kind = "LODGING"
	KindMeal    Kind = "MEAL"
)

// IsValid reports whether k names a known variant
func (k Kind) IsValid() bool {
	return k == KindTravel || k == KindLodging || k == KindMeal
}

// DistanceResolver looks up the road distance between two locations
type DistanceResolver interface {
	ResolveDistanceKm(ctx context.Context, from, to string) (float64, error)
}

// Details holds the variant-specific fields of an expense.
// Implemented only by *Travel, *Lodging and *Meal.
type Details interface {
	Kind() Kind

	// LocalValidity returns nil when the variant fields are well formed
	LocalValidity() error

	clone() Details
}

// computeAmount dispatches the amount strategy of the variant.
// Travel resolves a zero distance first and keeps the resolved value.
func computeAmount(ctx context.Context, d Details, price float64, resolver DistanceResolver) (float64, error) {
	switch v := d.(type) {
	case *Travel:
		if v.DistanceKm == 0 {
			if err := v.resolve(ctx, resolver); err != nil {
				return 0, err
			}
		}
		return v.Amount(price), nil
	case *Lodging:
		return v.Amount(price), nil
	case *Meal:
		return v.Amount(price), nil
	default:
		panic(fmt.Sprintf("entity: unknown expense variant %T", d))
	}
}

// MarshalDetails encodes variant fields for storage
func MarshalDetails(d Details) ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalDetails decodes variant fields stored by MarshalDetails
func UnmarshalDetails(kind Kind, data []byte) (Details, error) {
	var d Details
	switch kind {
	case KindTravel:
		d = &Travel{}
	case KindLodging:
		d = &Lodging{}
	case KindMeal:
		d = &Meal{}
	default:
		return nil, fmt.Errorf("unknown expense kind %q", kind)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", kind, err)
	}
	return d, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
