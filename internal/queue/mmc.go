package queue

import (
	"bytes"
	"fmt"
	"math"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"github.com/shopspring/decimal"
)

// Metrics holds the steady-state measures of an M/M/c queue: Poisson
// arrivals at rate λ, exponential service at rate μ per server and c
// parallel servers. It is computed once by New and never changes.
//
// Utilization is λ/μ, the offered load in server units. It is not divided
// by c, and it is the ρ the closed forms for P0 and Lq are written in.
type Metrics struct {
	arrivalRate decimal.Decimal
	serviceRate decimal.Decimal
	servers     int

	utilization     decimal.Decimal
	idleProbability decimal.Decimal
	queueLength     decimal.Decimal
	waitTime        decimal.Decimal
	systemLength    decimal.Decimal
	responseTime    decimal.Decimal
}

type options struct {
	precision int
}

// Option configures New.
type Option func(*options)

// WithPrecision sets the number of significant digits kept by the
// calculation. The default is DefaultPrecision. New rejects values below 1
// or above math.MaxInt32.
func WithPrecision(digits int) Option {
	return func(o *options) {
		o.precision = digits
	}
}

// Stable reports whether c servers at rate μ strictly outpace arrivals at
// rate λ. Only stable queues have a steady state.
func Stable(arrivalRate, serviceRate decimal.Decimal, servers int) bool {
	return servers >= 1 && decimal.NewFromInt(int64(servers)).Mul(serviceRate).GreaterThan(arrivalRate)
}

// CheckStability returns an *InstabilityError when c·μ − λ ≤ 0.
func CheckStability(arrivalRate, serviceRate decimal.Decimal, servers int) error {
	if Stable(arrivalRate, serviceRate, servers) {
		return nil
	}

	return &InstabilityError{
		ArrivalRate: arrivalRate,
		ServiceRate: serviceRate,
		Servers:     servers,
	}
}

// NewFromFloat is New for float64 rates. The rates are converted to their
// shortest decimal representation, so 1.9 becomes exactly 1.9.
func NewFromFloat(arrivalRate, serviceRate float64, servers int, opts ...Option) (*Metrics, error) {
	return New(decimal.NewFromFloat(arrivalRate), decimal.NewFromFloat(serviceRate), servers, opts...)
}

// New computes the metrics of an M/M/c queue. It fails with an
// *InstabilityError when the servers cannot keep up with arrivals
// (c·μ ≤ λ), and with an invalid_argument error for non-positive rates or
// fewer than one server.
func New(arrivalRate, serviceRate decimal.Decimal, servers int, opts ...Option) (m *Metrics, err error) {
	errFactory := errors.New()

	o := options{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}

	if o.precision < 1 || int64(o.precision) > math.MaxInt32 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, struct {
			Precision int
		}{
			Precision: o.precision,
		})
	}

	if !arrivalRate.IsPositive() || !serviceRate.IsPositive() || servers < 1 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, struct {
			ArrivalRate string
			ServiceRate string
			Servers     int
		}{
			ArrivalRate: arrivalRate.String(),
			ServiceRate: serviceRate.String(),
			Servers:     servers,
		})
	}

	if err := CheckStability(arrivalRate, serviceRate, servers); err != nil {
		return nil, err
	}

	fault := func(reason string) error {
		return errFactory.WithData(errors.ErrNumeric, numericFault{
			ArrivalRate: arrivalRate.String(),
			ServiceRate: serviceRate.String(),
			Servers:     servers,
			Reason:      reason,
		})
	}

	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fault(fmt.Sprint(r))
		}
	}()

	m = &Metrics{
		arrivalRate: arrivalRate,
		serviceRate: serviceRate,
		servers:     servers,
	}
	m.compute(arith{prec: int32(o.precision)})

	if !m.idleProbability.IsPositive() || m.waitTime.IsNegative() {
		return nil, fault(fmt.Sprintf("p0=%s wq=%s", m.idleProbability, m.waitTime))
	}

	return m, nil
}

func (m *Metrics) compute(a arith) {
	lambda, mu, c := m.arrivalRate, m.serviceRate, m.servers

	capacity := a.mul(decimal.NewFromInt(int64(c)), mu)
	slack := a.sub(capacity, lambda)
	rho := a.div(lambda, mu)

	// P0 = 1 / (Σ_{n<c} ρⁿ/n! + ρᶜ/c! · cμ/(cμ−λ))
	sum := one
	for n := 1; n < c; n++ {
		sum = a.add(sum, a.div(a.pow(rho, n), factorial(n)))
	}
	erlang := a.div(a.pow(rho, c), factorial(c))
	correction := a.div(capacity, slack)
	p0 := a.div(one, a.add(sum, a.mul(erlang, correction)))

	// Lq = ρᶜ/(c−1)! · λμ/(cμ−λ)² · P0
	head := a.div(a.pow(rho, c), factorial(c-1))
	tail := a.div(a.mul(lambda, mu), a.pow(slack, 2))
	lq := a.mul(a.mul(head, tail), p0)

	wq := a.div(lq, lambda)

	m.utilization = rho
	m.idleProbability = p0
	m.queueLength = lq
	m.waitTime = wq
	m.systemLength = a.add(lq, rho)
	m.responseTime = a.add(wq, a.div(one, mu))
}

func (m *Metrics) ArrivalRate() decimal.Decimal {
	return m.arrivalRate
}

func (m *Metrics) ServiceRate() decimal.Decimal {
	return m.serviceRate
}

func (m *Metrics) Servers() int {
	return m.servers
}

// Utilization returns ρ = λ/μ.
func (m *Metrics) Utilization() decimal.Decimal {
	return m.utilization
}

// IdleProbability returns P0, the probability that the system is empty.
func (m *Metrics) IdleProbability() decimal.Decimal {
	return m.idleProbability
}

// QueueLength returns Lq, the expected number of customers waiting.
func (m *Metrics) QueueLength() decimal.Decimal {
	return m.queueLength
}

// WaitTime returns Wq, the expected time spent waiting before service.
func (m *Metrics) WaitTime() decimal.Decimal {
	return m.waitTime
}

// SystemLength returns L = Lq + λ/μ, waiting plus in service.
func (m *Metrics) SystemLength() decimal.Decimal {
	return m.systemLength
}

// ResponseTime returns W = Wq + 1/μ.
func (m *Metrics) ResponseTime() decimal.Decimal {
	return m.responseTime
}

func (m *Metrics) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "lambda=%s; mu=%s; c=%d; ", m.arrivalRate, m.serviceRate, m.servers)
	fmt.Fprintf(&b, "rho=%s; p0=%s; ", m.utilization, m.idleProbability)
	fmt.Fprintf(&b, "Lq=%s; Wq=%s; L=%s; W=%s", m.queueLength, m.waitTime, m.systemLength, m.responseTime)
	return b.String()
}
