package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := New(KindSeatConflict, "some seats already booked")

	assert.True(t, errors.Is(err, SeatConflict))
	assert.False(t, errors.Is(err, NotFound))

	wrapped := fmt.Errorf("reserve: %w", err)
	assert.True(t, errors.Is(wrapped, SeatConflict))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, cause, "load booking %d", 7)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load booking 7: connection reset", err.Error())
	assert.Equal(t, "load booking 7", Message(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "booking not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
}
