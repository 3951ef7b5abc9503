package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.Equal(t, 42, *ok.Success)

	errBoom := errors.New("boom")
	failed := FailureResult[int, error](errBoom)
	assert.True(t, failed.IsFailure())
	assert.False(t, failed.IsSuccess())
	assert.ErrorIs(t, *failed.Failure, errBoom)

	var zero OperationResult[int, error]
	assert.False(t, zero.IsSuccess())
	assert.False(t, zero.IsFailure())
}
