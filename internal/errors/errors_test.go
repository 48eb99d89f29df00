package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryNew(t *testing.T) {
	err := errors.New().New(errors.ErrInvalidGrid)

	assert.Equal(t, errors.ErrInvalidGrid, err.Code())
	assert.Equal(t, "Invalid search grid", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestFactoryWrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := errors.New().Wrap(errors.ErrRender, cause)

	assert.Equal(t, "Failed to render report: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWithData(t *testing.T) {
	err := errors.New().WithData(errors.ErrNumeric, struct{ Servers int }{Servers: 3})

	assert.Equal(t, "Numeric failure: {Servers:3}", err.Error())
	assert.Equal(t, struct{ Servers int }{Servers: 3}, err.GetData())
}

func TestWithMessageKeepsCode(t *testing.T) {
	err := errors.New().New(errors.ErrInvalidConfig).WithMessage("max_wait must be positive")

	assert.Equal(t, errors.ErrInvalidConfig, err.Code())
	assert.Equal(t, "max_wait must be positive", err.Error())
}

func TestGetErrorMessageUnknownCode(t *testing.T) {
	assert.Equal(t, "made_up", errors.GetErrorMessage(errors.ErrorCode("made_up")))
}

func TestIsMatchesCode(t *testing.T) {
	errFactory := errors.New()
	err := fmt.Errorf("outer: %w", errFactory.Wrap(errors.ErrSearchFailed, fmt.Errorf("inner")))

	assert.True(t, errors.Is(err, errFactory.New(errors.ErrSearchFailed)))
	assert.False(t, errors.Is(err, errFactory.New(errors.ErrRender)))
}

func TestCodeOf(t *testing.T) {
	errFactory := errors.New()
	inner := errFactory.New(errors.ErrUnstableQueue)
	outer := errFactory.Wrap(errors.ErrSearchFailed, inner)

	assert.Equal(t, errors.ErrSearchFailed, errors.CodeOf(outer))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(fmt.Errorf("plain")))
	require.True(t, errors.HasCode(outer, errors.ErrUnstableQueue))
	assert.False(t, errors.HasCode(outer, errors.ErrRender))
}
