package report

import "codeberg.org/mutker/mmcqueues/internal/errors"

const (
	ErrInvalidFormat = errors.ErrInvalidFormat
	ErrRender        = errors.ErrRender
)
