package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MealCategory is one of the recognised meal kinds
type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
)

var mealMultipliers = map[MealCategory]float64{
	MealBreakfast: 0.4,
	MealLunch:     1.0,
	MealDinner:    1.2,
}

// accepted spellings after normalisation
var mealSpellings = map[string]MealCategory{
	"breakfast":      MealBreakfast,
	"petit-dejeuner": MealBreakfast,
	"lunch":          MealLunch,
	"dejeuner":       MealLunch,
	"dinner":         MealDinner,
	"diner":          MealDinner,
}

var folder = cases.Fold()

// normalizeCategory folds case, strips accents and collapses separators
func normalizeCategory(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(raw))
	if err != nil {
		stripped = strings.TrimSpace(raw)
	}
	folded := folder.String(stripped)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "-")
}

// ParseMealCategory matches raw against the accepted spellings
func ParseMealCategory(raw string) (MealCategory, bool) {
	c, ok := mealSpellings[normalizeCategory(raw)]
	return c, ok
}

// Multiplier returns the price factor of the category, 1.0 if unknown
func (c MealCategory) Multiplier() float64 {
	if m, ok := mealMultipliers[c]; ok {
		return m
	}
	return 1.0
}

// Meal is a meal priced as a base price times a category multiplier
type Meal struct {
	Category string `json:"meal_category"`
}

func (m *Meal) Kind() Kind { return KindMeal }

// Amount returns basePrice * multiplier; unrecognised categories use 1.0
func (m *Meal) Amount(basePrice float64) float64 {
	category, _ := ParseMealCategory(m.Category)
	return roundCents(basePrice * category.Multiplier())
}

// LocalValidity requires a recognised category
func (m *Meal) LocalValidity() error {
	if _, ok := ParseMealCategory(m.Category); !ok {
		return NewValidationError("", "meal_category", "unrecognised meal category "+m.Category)
	}
	return nil
}

func (m *Meal) clone() Details {
	c := *m
	return &c
}
