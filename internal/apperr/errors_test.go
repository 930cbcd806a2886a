package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("quantity must be > 0"), KindValidation},
		{"conflict", Conflictf("duplicate"), KindConflict},
		{"not found", NotFoundf("missing"), KindNotFound},
		{"integrity", Integrity(errors.New("23503"), "constraint"), KindIntegrity},
		{"wrapped", fmt.Errorf("outer: %w", NotFoundf("inner")), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessagesOf_HidesPlainErrors(t *testing.T) {
	assert.Equal(t, []string{"internal server error"}, MessagesOf(errors.New("pq: password authentication failed")))
	assert.Equal(t, []string{"a", "b"}, MessagesOf(Validation("a", "b")))
	assert.Equal(t, []string{"failed to load"}, MessagesOf(Internal(errors.New("secret detail"), "failed to load")))
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.NoError(t, c.Err())

	c.Check(true, "never recorded")
	c.Check(false, "name is required")
	c.Addf("protein must be >= 0, got %v", -1.0)

	err := c.Err()
	assert.True(t, Is(err, KindValidation))
	assert.Equal(t, []string{"name is required", "protein must be >= 0, got -1"}, MessagesOf(err))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to list products")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to list products")
	assert.Contains(t, err.Error(), "connection reset")
}
