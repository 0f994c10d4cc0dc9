package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliderStartsAtGlobalBounds(t *testing.T) {
	s := NewRangeSlider(200, 1200)
	assert.Equal(t, 200.0, s.Low())
	assert.Equal(t, 1200.0, s.High())
	assert.Equal(t, 50.0, s.MinGap())
}

func TestSliderEnforcesMinimumGapOnEveryMove(t *testing.T) {
	s := NewRangeSlider(0, 1000)
	s.BeginDrag()

	// Walk the lower handle toward the upper one in small increments; the
	// gap invariant must hold after every intermediate move.
	for v := 0.0; v <= 1000; v += 25 {
		s.DragLow(v)
		require.GreaterOrEqual(t, s.High()-s.Low(), s.MinGap(),
			"gap violated with low handle at %f", v)
	}
	assert.Equal(t, 950.0, s.Low(), "lower handle stops at high minus gap")

	for v := 1000.0; v >= 0; v -= 25 {
		s.DragHigh(v)
		require.GreaterOrEqual(t, s.High()-s.Low(), s.MinGap(),
			"gap violated with high handle at %f", v)
	}
}

func TestSliderClampsToGlobalRange(t *testing.T) {
	s := NewRangeSlider(100, 900)
	s.BeginDrag()

	s.DragLow(-500)
	assert.Equal(t, 100.0, s.Low())

	s.DragHigh(5000)
	assert.Equal(t, 900.0, s.High())
}

func TestSliderCommitsOncePerGesture(t *testing.T) {
	s := NewRangeSlider(0, 1000)

	s.BeginDrag()
	s.DragLow(100)
	s.DragLow(200)
	s.DragHigh(800)

	low, high, changed := s.EndDrag()
	assert.True(t, changed)
	assert.Equal(t, 200.0, low)
	assert.Equal(t, 800.0, high)

	// A second release without movement must not trigger another commit.
	_, _, changed = s.EndDrag()
	assert.False(t, changed)

	// A gesture that never moves a handle commits nothing.
	s.BeginDrag()
	_, _, changed = s.EndDrag()
	assert.False(t, changed)
}

func TestSliderQueryFiresOnceOnRelease(t *testing.T) {
	b := newFakeBackend(t)
	f := NewFilterPanel(b.client())
	s := NewRangeSlider(0, 1000)

	s.BeginDrag()
	s.DragLow(150)
	s.DragHigh(700)
	// No query during the drag.
	require.Zero(t, b.listCalls)

	low, high, changed := s.EndDrag()
	require.True(t, changed)
	f.SetTcoRange(low, high)
	_, err := f.Query(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, b.listCalls, "exactly one query per gesture")
	assert.Equal(t, 150.0, f.Filters().MinTco)
	assert.Equal(t, 700.0, f.Filters().MaxTco)
}

func TestSliderSetBoundsReclamps(t *testing.T) {
	s := NewRangeSlider(0, 1000)
	s.BeginDrag()
	s.DragLow(400)
	s.DragHigh(600)
	s.EndDrag()

	s.SetBounds(500, 550)
	assert.GreaterOrEqual(t, s.High()-s.Low(), s.MinGap())
	assert.GreaterOrEqual(t, s.Low(), 500.0)
	assert.LessOrEqual(t, s.High(), 550.0)
}
