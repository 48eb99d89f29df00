package search

import (
	"context"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"codeberg.org/mutker/mmcqueues/internal/logger"
	"codeberg.org/mutker/mmcqueues/internal/queue"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MinimalServers returns the metrics of the smallest server count c in
// 1..maxServers whose Wq is strictly below maxWait. Server counts that
// cannot keep up with arrivals are skipped. found is false when no count
// qualifies.
func MinimalServers(
	arrivalRate, serviceRate, maxWait decimal.Decimal, maxServers int, opts ...queue.Option,
) (m *queue.Metrics, found bool, err error) {
	for c := 1; c <= maxServers; c++ {
		if !queue.Stable(arrivalRate, serviceRate, c) {
			continue
		}

		m, err = queue.New(arrivalRate, serviceRate, c, opts...)
		if err != nil {
			return nil, false, errors.New().Wrap(ErrSearchFailed, err).WithData(searchFault{
				ArrivalRate: arrivalRate.String(),
				ServiceRate: serviceRate.String(),
				Servers:     c,
			})
		}

		if m.WaitTime().LessThan(maxWait) {
			return m, true, nil
		}
	}

	return nil, false, nil
}

// Searcher runs MinimalServers over every pair of a Grid.
type Searcher struct {
	grid     Grid
	workers  int
	log      logger.Logger
	calcOpts []queue.Option
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithWorkers bounds the number of pairs searched concurrently. Values
// below 2 keep the sweep sequential.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		s.workers = n
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Searcher) {
		s.log = log
	}
}

// WithPrecision sets the significant digits used by every calculation.
func WithPrecision(digits int) Option {
	return func(s *Searcher) {
		s.calcOpts = append(s.calcOpts, queue.WithPrecision(digits))
	}
}

func New(grid Grid, opts ...Option) (*Searcher, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	s := &Searcher{
		grid:    grid,
		workers: 1,
		log:     logger.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run searches every pair and returns the outcomes in grid order. The
// result does not depend on the worker count. The first calculation failure
// aborts the sweep.
func (s *Searcher) Run(ctx context.Context) (*Result, error) {
	pairs := s.grid.Pairs()
	outcomes := make([]Outcome, len(pairs))

	s.log.Info().
		Int("pairs", len(pairs)).
		Int("max_servers", s.grid.MaxServers).
		Float64("max_wait", s.grid.MaxWait).
		Int("workers", max(s.workers, 1)).
		Msg("Starting server search")

	if s.workers < 2 {
		for i, p := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, errors.New().Wrap(ErrCancelled, err)
			}

			o, err := s.searchPair(p)
			if err != nil {
				return nil, err
			}
			outcomes[i] = o
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)

		for i, p := range pairs {
			i, p := i, p
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return errors.New().Wrap(ErrCancelled, err)
				}

				o, err := s.searchPair(p)
				if err != nil {
					return err
				}
				outcomes[i] = o
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	result := newResult(s.grid, outcomes)

	s.log.Info().
		Int("resolved", len(result.Resolved())).
		Int("unresolved", len(result.Unresolved())).
		Msg("Server search complete")

	return result, nil
}

func (s *Searcher) searchPair(p Pair) (Outcome, error) {
	m, found, err := MinimalServers(
		decimal.NewFromFloat(p.ArrivalRate),
		decimal.NewFromFloat(p.ServiceRate),
		decimal.NewFromFloat(s.grid.MaxWait),
		s.grid.MaxServers,
		s.calcOpts...,
	)
	if err != nil {
		s.log.Error().Err(err).Stringer("pair", p).Msg("Search aborted")
		return Outcome{}, err
	}

	if !found {
		s.log.Debug().Stringer("pair", p).Msg("No server count meets the wait target")
		return Outcome{Pair: p}, nil
	}

	s.log.Debug().
		Stringer("pair", p).
		Int("servers", m.Servers()).
		Str("wait_time", m.WaitTime().String()).
		Msg("Pair resolved")

	return Outcome{Pair: p, Metrics: m}, nil
}
