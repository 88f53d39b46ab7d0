package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

const dateLayout = "2006-01-02"

// RegisterAccountRequest is the body of POST /api/accounts
type RegisterAccountRequest struct {
	Name  string      `json:"name" binding:"required"`
	Email string      `json:"email" binding:"required"`
	Role  entity.Role `json:"role" binding:"required"`
}

// CreateExpenseRequest is the body of POST /api/expenses. Only the fields of
// the chosen kind are read.
type CreateExpenseRequest struct {
	Kind             entity.Kind `json:"kind" binding:"required"`
	Date             string      `json:"date"`
	Amount           float64     `json:"amount"`
	ReceiptReference string      `json:"receipt_reference"`

	DepartureLocation string  `json:"departure_location"`
	ArrivalLocation   string  `json:"arrival_location"`
	DistanceKm        float64 `json:"distance_km"`

	City       string `json:"city"`
	StayStart  string `json:"stay_start"`
	StayEnd    string `json:"stay_end"`
	NightCount int    `json:"night_count"`

	MealCategory string `json:"meal_category"`
}

// Params converts the request into expense parameters for ownerID
func (r CreateExpenseRequest) Params(ownerID string) (entity.NewExpenseParams, error) {
	p := entity.NewExpenseParams{
		OwnerID:          ownerID,
		Amount:           r.Amount,
		ReceiptReference: r.ReceiptReference,
	}

	date, err := parseDate("date", r.Date)
	if err != nil {
		return p, err
	}
	p.Date = date

	switch r.Kind {
	case entity.KindTravel:
		p.Details = &entity.Travel{
			DepartureLocation: r.DepartureLocation,
			ArrivalLocation:   r.ArrivalLocation,
			DistanceKm:        r.DistanceKm,
		}
	case entity.KindLodging:
		start, err := parseDate("stay_start", r.StayStart)
		if err != nil {
			return p, err
		}
		end, err := parseDate("stay_end", r.StayEnd)
		if err != nil {
			return p, err
		}
		p.Details = &entity.Lodging{
			City:       r.City,
			StayStart:  start,
			StayEnd:    end,
			NightCount: r.NightCount,
		}
	case entity.KindMeal:
		p.Details = &entity.Meal{Category: r.MealCategory}
	default:
		return p, entity.NewValidationError("", "kind", fmt.Sprintf("unknown expense kind %q", r.Kind))
	}
	return p, nil
}

// UpdateExpenseRequest is the body of PATCH /api/expenses/:id. Absent fields
// are left unchanged.
type UpdateExpenseRequest struct {
	Date             *string  `json:"date"`
	Amount           *float64 `json:"amount"`
	ReceiptReference *string  `json:"receipt_reference"`

	DepartureLocation *string  `json:"departure_location"`
	ArrivalLocation   *string  `json:"arrival_location"`
	DistanceKm        *float64 `json:"distance_km"`

	City       *string `json:"city"`
	StayStart  *string `json:"stay_start"`
	StayEnd    *string `json:"stay_end"`
	NightCount *int    `json:"night_count"`

	MealCategory *string `json:"meal_category"`
}

// Patch converts the request into an entity patch
func (r UpdateExpenseRequest) Patch() (entity.Patch, error) {
	p := entity.Patch{
		Amount:            r.Amount,
		ReceiptReference:  r.ReceiptReference,
		DepartureLocation: r.DepartureLocation,
		ArrivalLocation:   r.ArrivalLocation,
		DistanceKm:        r.DistanceKm,
		City:              r.City,
		NightCount:        r.NightCount,
		MealCategory:      r.MealCategory,
	}

	var err error
	if p.Date, err = parseOptionalDate("date", r.Date); err != nil {
		return p, err
	}
	if p.StayStart, err = parseOptionalDate("stay_start", r.StayStart); err != nil {
		return p, err
	}
	if p.StayEnd, err = parseOptionalDate("stay_end", r.StayEnd); err != nil {
		return p, err
	}
	return p, nil
}

// RecalculateRequest is the body of POST /api/expenses/:id/recalculate. A
// zero price selects the configured price for the expense kind.
type RecalculateRequest struct {
	Price float64 `json:"price"`
}

// RefuseRequest is the body of POST /api/review/:id/refuse
type RefuseRequest struct {
	Reason string `json:"reason"`
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value is the zero time,
// which the validity rules reject later.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, entity.NewValidationError("", field, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return t.UTC(), nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseStatus reads an optional ?status= filter
func parseStatus(raw string) (workflow.State, bool, error) {
	if raw == "" {
		return "", false, nil
	}
	state := workflow.State(strings.ToUpper(strings.TrimSpace(raw)))
	if !state.IsValid() {
		return "", false, entity.NewValidationError("", "status", fmt.Sprintf("unknown status %q", raw))
	}
	return state, true, nil
}
