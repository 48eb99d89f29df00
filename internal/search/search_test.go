package search_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"codeberg.org/mutker/mmcqueues/internal/logger"
	"codeberg.org/mutker/mmcqueues/internal/queue"
	"codeberg.org/mutker/mmcqueues/internal/search"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertClose(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w := d(want)
	assert.Truef(t, got.Sub(w).Abs().LessThanOrEqual(w.Abs().Mul(d("1e-20"))), "want %s, got %s", w, got)
}

func TestMinimalServers(t *testing.T) {
	tests := []struct {
		name       string
		lambda, mu string
		maxWait    string
		servers    int
		wq         string
	}{
		{"slow servers", "9", "1.9", "0.5", 6, "0.2069504733704904734201241004"},
		{"fast servers", "9", "6.3", "0.5", 2, "0.1653439153439153439153439153"},
		{"loose target takes first stable count", "9", "1.9", "2", 5, "1.743110021778292452150288231"},
		{"saturated count is skipped", "19", "1.9", "0.5", 11, "0.3590095814154380916490826071"},
		{"large pool", "555", "6.3", "0.5", 89, "0.1557052725569564956673736357"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, found, err := search.MinimalServers(d(tt.lambda), d(tt.mu), d(tt.maxWait), search.DefaultMaxServers)
			require.NoError(t, err)
			require.True(t, found)
			require.NotNil(t, m)

			assert.Equal(t, tt.servers, m.Servers())
			assertClose(t, tt.wq, m.WaitTime())
			assert.True(t, m.WaitTime().LessThan(d(tt.maxWait)))
		})
	}
}

func TestMinimalServersIsFirstFit(t *testing.T) {
	lambda, mu, maxWait := d("9"), d("1.9"), d("0.5")

	m, found, err := search.MinimalServers(lambda, mu, maxWait, search.DefaultMaxServers)
	require.NoError(t, err)
	require.True(t, found)

	// Five servers is the smallest stable pool: 4 x 1.9 = 7.6 < 9 <= 5 x 1.9.
	assert.False(t, queue.Stable(lambda, mu, 4))
	assert.True(t, queue.Stable(lambda, mu, 5))

	for c := 1; c < m.Servers(); c++ {
		if !queue.Stable(lambda, mu, c) {
			continue
		}
		smaller, err := queue.New(lambda, mu, c)
		require.NoError(t, err)
		assert.False(t, smaller.WaitTime().LessThan(maxWait), "c=%d already meets the target", c)
	}
}

func TestMinimalServersNoSolution(t *testing.T) {
	m, found, err := search.MinimalServers(d("648"), d("6.3"), d("0.5"), search.DefaultMaxServers)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	m, found, err = search.MinimalServers(d("50"), d("1"), d("0.5"), 10)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)
}

func TestMinimalServersPropagatesCalculationFailure(t *testing.T) {
	_, found, err := search.MinimalServers(d("9"), d("6.3"), d("0.5"), 5, queue.WithPrecision(0))
	require.Error(t, err)
	assert.False(t, found)

	assert.Equal(t, search.ErrSearchFailed, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "Servers:2")
}

func TestMinimalServersAbortsOnNumericFailure(t *testing.T) {
	// 29 servers is the first stable count for (181, 6.3); two significant
	// digits drive its P0 negative.
	m, found, err := search.MinimalServers(d("181"), d("6.3"), d("0.5"), search.DefaultMaxServers, queue.WithPrecision(2))
	require.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	assert.Equal(t, search.ErrSearchFailed, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, errors.ErrNumeric))
	assert.Contains(t, err.Error(), "ArrivalRate:181")
	assert.Contains(t, err.Error(), "ServiceRate:6.3")
	assert.Contains(t, err.Error(), "Servers:29")
}

func TestRunAbortsOnNumericFailure(t *testing.T) {
	g := search.Grid{
		ArrivalRates: []float64{9, 181},
		ServiceRates: []float64{6.3},
		MaxWait:      0.5,
		MaxServers:   search.DefaultMaxServers,
	}

	s, err := search.New(g, search.WithLogger(logger.Nop()), search.WithPrecision(2))
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, search.ErrSearchFailed, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, errors.ErrNumeric))
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*search.Grid)
	}{
		{"no arrival rates", func(g *search.Grid) { g.ArrivalRates = nil }},
		{"no service rates", func(g *search.Grid) { g.ServiceRates = []float64{} }},
		{"negative arrival rate", func(g *search.Grid) { g.ArrivalRates = []float64{9, -1} }},
		{"zero service rate", func(g *search.Grid) { g.ServiceRates = []float64{0} }},
		{"duplicate rate", func(g *search.Grid) { g.ServiceRates = []float64{1.9, 1.9} }},
		{"zero threshold", func(g *search.Grid) { g.MaxWait = 0 }},
		{"no servers", func(g *search.Grid) { g.MaxServers = 0 }},
	}

	require.NoError(t, search.DefaultGrid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := search.DefaultGrid()
			tt.mutate(&g)

			err := g.Validate()
			require.Error(t, err)
			assert.Equal(t, search.ErrInvalidGrid, errors.CodeOf(err))

			_, err = search.New(g)
			require.Error(t, err)
		})
	}
}

func TestGridPairsOrder(t *testing.T) {
	g := search.Grid{
		ArrivalRates: []float64{9, 11},
		ServiceRates: []float64{1.9, 6.3},
		MaxWait:      0.5,
		MaxServers:   10,
	}

	assert.Equal(t, []search.Pair{
		{ArrivalRate: 9, ServiceRate: 1.9},
		{ArrivalRate: 9, ServiceRate: 6.3},
		{ArrivalRate: 11, ServiceRate: 1.9},
		{ArrivalRate: 11, ServiceRate: 6.3},
	}, g.Pairs())
	assert.Equal(t, "(9, 1.9)", g.Pairs()[0].String())
}

func TestRunDefaultGrid(t *testing.T) {
	s, err := search.New(search.DefaultGrid(), search.WithLogger(logger.Nop()))
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 62, result.Len())
	assert.Len(t, result.Resolved(), 51)
	assert.True(t, result.MaxWait.Equal(d("0.5")))
	assert.Equal(t, 99, result.MaxServers)

	o, ok := result.Lookup(search.Pair{ArrivalRate: 9, ServiceRate: 6.3})
	require.True(t, ok)
	assert.Equal(t, 2, o.Servers())
	assertClose(t, "0.1653439153439153439153439153", o.WaitTime())

	o, ok = result.Lookup(search.Pair{ArrivalRate: 9, ServiceRate: 1.9})
	require.True(t, ok)
	assert.Equal(t, 6, o.Servers())

	o, ok = result.Lookup(search.Pair{ArrivalRate: 181, ServiceRate: 1.9})
	require.True(t, ok)
	assert.Equal(t, 97, o.Servers())

	_, ok = result.Lookup(search.Pair{ArrivalRate: 648, ServiceRate: 6.3})
	assert.False(t, ok)
	_, ok = result.Lookup(search.Pair{ArrivalRate: 1, ServiceRate: 1})
	assert.False(t, ok)

	unresolved := result.Unresolved()
	assert.Len(t, unresolved, 11)
	assert.Contains(t, unresolved, search.Pair{ArrivalRate: 217, ServiceRate: 1.9})
	assert.Contains(t, unresolved, search.Pair{ArrivalRate: 648, ServiceRate: 1.9})
	assert.Contains(t, unresolved, search.Pair{ArrivalRate: 648, ServiceRate: 6.3})

	for _, o := range result.Resolved() {
		assert.True(t, o.WaitTime().LessThan(result.MaxWait), o.Pair.String())
		assert.True(t, queue.Stable(o.Metrics.ArrivalRate(), o.Metrics.ServiceRate(), o.Servers()), o.Pair.String())
	}
}

func TestRunUnresolvedPairIsExplicit(t *testing.T) {
	g := search.Grid{
		ArrivalRates: []float64{9, 500},
		ServiceRates: []float64{1},
		MaxWait:      0.5,
		MaxServers:   20,
	}

	s, err := search.New(g, search.WithLogger(logger.Nop()))
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	outcomes := result.Outcomes()
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Resolved())
	assert.False(t, outcomes[1].Resolved())
	assert.Equal(t, 0, outcomes[1].Servers())
	assert.True(t, outcomes[1].WaitTime().IsZero())
	assert.Equal(t, []search.Pair{{ArrivalRate: 500, ServiceRate: 1}}, result.Unresolved())
}

func TestRunParallelMatchesSequential(t *testing.T) {
	run := func(opts ...search.Option) *search.Result {
		s, err := search.New(search.DefaultGrid(), append(opts, search.WithLogger(logger.Nop()))...)
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)
		return result
	}

	sequential := run()
	parallel := run(search.WithWorkers(8))

	seq, par := sequential.Outcomes(), parallel.Outcomes()
	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Pair, par[i].Pair)
		assert.Equal(t, seq[i].Servers(), par[i].Servers(), seq[i].Pair.String())
		assert.True(t, seq[i].WaitTime().Equal(par[i].WaitTime()), seq[i].Pair.String())
	}
}

func TestRunIsDeterministic(t *testing.T) {
	g := search.Grid{
		ArrivalRates: []float64{9},
		ServiceRates: []float64{6.3},
		MaxWait:      0.5,
		MaxServers:   search.DefaultMaxServers,
	}

	var first decimal.Decimal
	for i := 0; i < 3; i++ {
		s, err := search.New(g, search.WithLogger(logger.Nop()))
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)

		o, ok := result.Lookup(search.Pair{ArrivalRate: 9, ServiceRate: 6.3})
		require.True(t, ok)
		assert.Equal(t, 2, o.Servers())
		if i == 0 {
			first = o.WaitTime()
			continue
		}
		assert.True(t, first.Equal(o.WaitTime()))
	}
}

func TestRunCancelled(t *testing.T) {
	s, err := search.New(search.DefaultGrid(), search.WithLogger(logger.Nop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, search.ErrCancelled, errors.CodeOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunWithPrecision(t *testing.T) {
	g := search.Grid{
		ArrivalRates: []float64{57},
		ServiceRates: []float64{1.9},
		MaxWait:      0.5,
		MaxServers:   search.DefaultMaxServers,
	}

	s, err := search.New(g, search.WithLogger(logger.Nop()), search.WithPrecision(50))
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	o, ok := result.Lookup(search.Pair{ArrivalRate: 57, ServiceRate: 1.9})
	require.True(t, ok)
	assert.Equal(t, 31, o.Servers())
	assertClose(t, "0.4204980134138490931397295816", o.WaitTime())
}
