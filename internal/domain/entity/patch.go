package entity

import "time"

// Patch lists the fields to replace in a partial update. Nil fields are left alone.
// Variant fields must match the expense kind.
type Patch struct {
	Date             *time.Time `json:"date,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	ReceiptReference *string    `json:"receipt_reference,omitempty"`

	DepartureLocation *string  `json:"departure_location,omitempty"`
	ArrivalLocation   *string  `json:"arrival_location,omitempty"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`

	City       *string    `json:"city,omitempty"`
	StayStart  *time.Time `json:"stay_start,omitempty"`
	StayEnd    *time.Time `json:"stay_end,omitempty"`
	NightCount *int       `json:"night_count,omitempty"`

	MealCategory *string `json:"meal_category,omitempty"`
}

func (p Patch) apply(d *expenseData) error {
	if p.Date != nil {
		d.date = *p.Date
	}
	if p.Amount != nil {
		if *p.Amount < 0 {
			return NewValidationError(d.id, "amount", "amount cannot be negative")
		}
		d.amount = *p.Amount
	}
	if p.ReceiptReference != nil {
		d.receiptReference = *p.ReceiptReference
	}

	switch v := d.details.(type) {
	case *Travel:
		if err := p.rejectOthers(d.id, KindTravel); err != nil {
			return err
		}
		if p.DepartureLocation != nil {
			v.DepartureLocation = *p.DepartureLocation
		}
		if p.ArrivalLocation != nil {
			v.ArrivalLocation = *p.ArrivalLocation
		}
		if p.DistanceKm != nil {
			if *p.DistanceKm < 0 {
				return NewValidationError(d.id, "distance_km", "distance cannot be negative")
			}
			v.DistanceKm = *p.DistanceKm
		}
	case *Lodging:
		if err := p.rejectOthers(d.id, KindLodging); err != nil {
			return err
		}
		if p.City != nil {
			v.City = *p.City
		}
		if p.StayStart != nil {
			v.StayStart = *p.StayStart
		}
		if p.StayEnd != nil {
			v.StayEnd = *p.StayEnd
		}
		if p.NightCount != nil {
			v.NightCount = *p.NightCount
		}
	case *Meal:
		if err := p.rejectOthers(d.id, KindMeal); err != nil {
			return err
		}
		if p.MealCategory != nil {
			v.Category = *p.MealCategory
		}
	}
	return nil
}

// rejectOthers fails when p sets a field belonging to another variant
func (p Patch) rejectOthers(expenseID string, kind Kind) error {
	fields := []struct {
		name  string
		owner Kind
		set   bool
	}{
		{"departure_location", KindTravel, p.DepartureLocation != nil},
		{"arrival_location", KindTravel, p.ArrivalLocation != nil},
		{"distance_km", KindTravel, p.DistanceKm != nil},
		{"city", KindLodging, p.City != nil},
		{"stay_start", KindLodging, p.StayStart != nil},
		{"stay_end", KindLodging, p.StayEnd != nil},
		{"night_count", KindLodging, p.NightCount != nil},
		{"meal_category", KindMeal, p.MealCategory != nil},
	}
	for _, f := range fields {
		if f.set && f.owner != kind {
			return NewValidationError(expenseID, f.name, "field does not apply to a "+string(kind)+" expense")
		}
	}
	return nil
}
