package warning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryInsert_SuppressesWithinWindow(t *testing.T) {
	l := NewLedger()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, l.TryInsert("m1", "first", t0))
	assert.False(t, l.TryInsert("m1", "repeat", t0.Add(5*time.Minute)))
	assert.Equal(t, 1, l.Len())
}

func TestTryInsert_AllowsAfterWindow(t *testing.T) {
	l := NewLedger()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, l.TryInsert("m1", "first", t0))
	assert.True(t, l.TryInsert("m1", "second", t0.Add(11*time.Minute)))
}

func TestTryInsert_IndependentMessageIDs(t *testing.T) {
	l := NewLedger()
	t0 := time.Now()

	assert.True(t, l.TryInsert("a", "x", t0))
	assert.True(t, l.TryInsert("b", "y", t0))
	assert.Equal(t, 2, l.Len())
}

func TestClear(t *testing.T) {
	l := NewLedger()
	l.TryInsert("a", "x", time.Now())
	l.Clear()
	assert.Equal(t, 0, l.Len())
}
