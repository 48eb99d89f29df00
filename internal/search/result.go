package search

import (
	"codeberg.org/mutker/mmcqueues/internal/queue"
	"github.com/shopspring/decimal"
)

// Outcome is the search verdict for one pair. Metrics is nil when no server
// count up to the grid's maximum brings Wq under the threshold.
type Outcome struct {
	Pair    Pair
	Metrics *queue.Metrics
}

func (o Outcome) Resolved() bool {
	return o.Metrics != nil
}

// Servers returns the chosen server count, or 0 for an unresolved pair.
func (o Outcome) Servers() int {
	if o.Metrics == nil {
		return 0
	}

	return o.Metrics.Servers()
}

// WaitTime returns Wq of the chosen configuration, or zero for an
// unresolved pair.
func (o Outcome) WaitTime() decimal.Decimal {
	if o.Metrics == nil {
		return decimal.Zero
	}

	return o.Metrics.WaitTime()
}

// Result maps every grid pair to its outcome, in grid order.
type Result struct {
	MaxWait    decimal.Decimal
	MaxServers int

	outcomes []Outcome
	index    map[Pair]int
}

func newResult(grid Grid, outcomes []Outcome) *Result {
	index := make(map[Pair]int, len(outcomes))
	for i, o := range outcomes {
		index[o.Pair] = i
	}

	return &Result{
		MaxWait:    decimal.NewFromFloat(grid.MaxWait),
		MaxServers: grid.MaxServers,
		outcomes:   outcomes,
		index:      index,
	}
}

// Lookup returns the resolved outcome of p. Unresolved and unknown pairs
// report false.
func (r *Result) Lookup(p Pair) (Outcome, bool) {
	i, ok := r.index[p]
	if !ok || !r.outcomes[i].Resolved() {
		return Outcome{}, false
	}

	return r.outcomes[i], true
}

// Outcomes returns every outcome, resolved or not, in grid order.
func (r *Result) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

func (r *Result) Resolved() []Outcome {
	resolved := make([]Outcome, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		if o.Resolved() {
			resolved = append(resolved, o)
		}
	}

	return resolved
}

// Unresolved lists the pairs for which no server count qualified.
func (r *Result) Unresolved() []Pair {
	var pairs []Pair
	for _, o := range r.outcomes {
		if !o.Resolved() {
			pairs = append(pairs, o.Pair)
		}
	}

	return pairs
}

func (r *Result) Len() int {
	return len(r.outcomes)
}
