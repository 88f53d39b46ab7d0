package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Lodging is a hotel stay priced per night
type Lodging struct {
	City       string    `json:"city"`
	StayStart  time.Time `json:"stay_start"`
	StayEnd    time.Time `json:"stay_end"`
	NightCount int       `json:"night_count"`
}

func (l *Lodging) Kind() Kind { return KindLodging }

// Amount returns nightCount * pricePerNight
func (l *Lodging) Amount(pricePerNight float64) float64 {
	return roundCents(float64(l.NightCount) * pricePerNight)
}

// SpanNights returns the number of nights covered by the stay dates, rounded up
func (l *Lodging) SpanNights() int {
	return int(math.Ceil(l.StayEnd.Sub(l.StayStart).Hours() / 24))
}

// LocalValidity requires a city, a positive night count, ordered dates and a
// night count matching the date span
func (l *Lodging) LocalValidity() error {
	if strings.TrimSpace(l.City) == "" {
		return NewValidationError("", "city", "city is required")
	}
	if l.NightCount <= 0 {
		return NewValidationError("", "night_count", "night count must be positive")
	}
	if !l.StayStart.Before(l.StayEnd) {
		return NewValidationError("", "stay_end", "stay must end after it starts")
	}
	if span := l.SpanNights(); span != l.NightCount {
		return NewValidationError("", "night_count",
			fmt.Sprintf("declared %d nights but stay spans %d", l.NightCount, span))
	}
	return nil
}

func (l *Lodging) clone() Details {
	c := *l
	return &c
}
