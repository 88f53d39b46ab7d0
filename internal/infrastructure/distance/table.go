package distance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// DefaultDistanceKm is returned for pairs missing from the table
const DefaultDistanceKm = 100.0

// TableResolver resolves distances from a fixed table of location pairs.
// Lookups ignore case and surrounding blanks and are symmetric.
type TableResolver struct {
	mu       sync.RWMutex
	table    map[[2]string]float64
	fallback float64
	logger   *zap.Logger
}

// NewTableResolver builds a resolver from entries of the form
// "Paris|Lyon" -> 465. A fallback <= 0 selects DefaultDistanceKm.
func NewTableResolver(entries map[string]float64, fallback float64, logger *zap.Logger) (*TableResolver, error) {
	if fallback <= 0 {
		fallback = DefaultDistanceKm
	}
	r := &TableResolver{
		table:    make(map[[2]string]float64, len(entries)),
		fallback: fallback,
		logger:   logger,
	}
	for pair, km := range entries {
		from, to, ok := strings.Cut(pair, "|")
		if !ok {
			return nil, fmt.Errorf("distance entry %q: expected \"from|to\"", pair)
		}
		if err := r.Set(from, to, km); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set records the distance between two locations
func (r *TableResolver) Set(from, to string, km float64) error {
	if km <= 0 {
		return fmt.Errorf("distance %s-%s must be positive, got %s", from, to, strconv.FormatFloat(km, 'f', -1, 64))
	}
	a, b := normalize(from), normalize(to)
	if a == "" || b == "" {
		return fmt.Errorf("distance entry needs two locations, got %q and %q", from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[key(a, b)] = km
	return nil
}

// ResolveDistanceKm implements port.DistanceResolver
func (r *TableResolver) ResolveDistanceKm(ctx context.Context, from, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a, b := normalize(from), normalize(to)
	if a == "" || b == "" {
		return 0, fmt.Errorf("both locations are required")
	}
	if a == b {
		return 0, fmt.Errorf("%w %q", entity.ErrSameLocation, from)
	}

	r.mu.RLock()
	km, ok := r.table[key(a, b)]
	r.mu.RUnlock()
	if ok {
		return km, nil
	}

	r.logger.Debug("Distance not in table, using fallback",
		zap.String("from", from),
		zap.String("to", to),
		zap.Float64("km", r.fallback))
	return r.fallback, nil
}

func normalize(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

func key(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Verify interface compliance
var _ port.DistanceResolver = (*TableResolver)(nil)
