package queue

import (
	"fmt"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"github.com/shopspring/decimal"
)

// InstabilityError reports a server pool whose capacity c·μ does not exceed
// the arrival rate λ. Such a queue grows without bound and has no steady state.
type InstabilityError struct {
	ArrivalRate decimal.Decimal
	ServiceRate decimal.Decimal
	Servers     int
}

// Capacity returns c·μ.
func (e *InstabilityError) Capacity() decimal.Decimal {
	return e.ServiceRate.Mul(decimal.NewFromInt(int64(e.Servers)))
}

// Saturated reports the boundary case c·μ = λ.
func (e *InstabilityError) Saturated() bool {
	return e.Capacity().Equal(e.ArrivalRate)
}

func (e *InstabilityError) Error() string {
	if e.Saturated() {
		return fmt.Sprintf("queue saturated: c*mu = lambda = %s (c=%d, mu=%s)",
			e.ArrivalRate, e.Servers, e.ServiceRate)
	}

	return fmt.Sprintf("queue unstable: c*mu = %s < lambda = %s (c=%d, mu=%s)",
		e.Capacity(), e.ArrivalRate, e.Servers, e.ServiceRate)
}

// Code ties the error into the coded error chain.
func (*InstabilityError) Code() errors.ErrorCode {
	return errors.ErrUnstableQueue
}

// IsUnstable reports whether err carries an InstabilityError.
func IsUnstable(err error) bool {
	var target *InstabilityError
	return errors.As(err, &target)
}

type numericFault struct {
	ArrivalRate string
	ServiceRate string
	Servers     int
	Reason      string
}
