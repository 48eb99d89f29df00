package search

import "codeberg.org/mutker/mmcqueues/internal/errors"

const (
	ErrInvalidGrid  = errors.ErrInvalidGrid
	ErrSearchFailed = errors.ErrSearchFailed
	ErrCancelled    = errors.ErrorCode("search_cancelled")
)

type searchFault struct {
	ArrivalRate string
	ServiceRate string
	Servers     int
}
