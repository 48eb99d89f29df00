package search

import (
	"fmt"
	"math"
	"strconv"

	"codeberg.org/mutker/mmcqueues/internal/errors"
)

// Default sweep used when no rates are configured.
var (
	DefaultServiceRates = []float64{1.9, 6.3}
	DefaultArrivalRates = []float64{
		9, 11, 13, 15, 19, 22, 25, 26, 31, 37, 43,
		45, 57, 68, 79, 81, 101, 121, 141, 145, 181,
		217, 253, 260, 325, 370, 390, 455, 463, 555, 648,
	}
)

const (
	DefaultMaxWait    = 0.5
	DefaultMaxServers = 99
)

// Pair identifies one grid point.
type Pair struct {
	ArrivalRate float64
	ServiceRate float64
}

func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", formatRate(p.ArrivalRate), formatRate(p.ServiceRate))
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Grid is the read-only input of a sweep. MaxWait is a strict upper bound on
// Wq and MaxServers is the largest server count tried, inclusive.
type Grid struct {
	ArrivalRates []float64
	ServiceRates []float64
	MaxWait      float64
	MaxServers   int
}

func DefaultGrid() Grid {
	return Grid{
		ArrivalRates: append([]float64(nil), DefaultArrivalRates...),
		ServiceRates: append([]float64(nil), DefaultServiceRates...),
		MaxWait:      DefaultMaxWait,
		MaxServers:   DefaultMaxServers,
	}
}

func (g Grid) Validate() error {
	errFactory := errors.New()

	invalid := func(field string, value any, reason string) error {
		return errFactory.WithData(ErrInvalidGrid, struct {
			Field  string
			Value  any
			Reason string
		}{
			Field:  field,
			Value:  value,
			Reason: reason,
		})
	}

	if err := validateRates("arrival_rates", g.ArrivalRates, invalid); err != nil {
		return err
	}
	if err := validateRates("service_rates", g.ServiceRates, invalid); err != nil {
		return err
	}
	if !isPositive(g.MaxWait) {
		return invalid("max_wait", g.MaxWait, "must be a positive number")
	}
	if g.MaxServers < 1 {
		return invalid("max_servers", g.MaxServers, "must be at least 1")
	}

	return nil
}

func validateRates(field string, rates []float64, invalid func(string, any, string) error) error {
	if len(rates) == 0 {
		return invalid(field, rates, "must not be empty")
	}

	seen := make(map[float64]struct{}, len(rates))
	for _, r := range rates {
		if !isPositive(r) {
			return invalid(field, r, "must be a positive number")
		}
		if _, dup := seen[r]; dup {
			return invalid(field, r, "duplicate rate")
		}
		seen[r] = struct{}{}
	}

	return nil
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Pairs lists the grid points with arrival rates in the outer position.
func (g Grid) Pairs() []Pair {
	pairs := make([]Pair, 0, len(g.ArrivalRates)*len(g.ServiceRates))
	for _, lambda := range g.ArrivalRates {
		for _, mu := range g.ServiceRates {
			pairs = append(pairs, Pair{ArrivalRate: lambda, ServiceRate: mu})
		}
	}

	return pairs
}
