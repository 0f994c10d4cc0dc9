// internal/wizard/slider.go
package wizard

// RangeSlider models the dual-handle TCO slider. Handles move freely during
// a drag, constrained to the global bounds and a minimum gap of 5% of the
// global range; the filter query fires once, when the gesture ends.
type RangeSlider struct {
	globalMin float64
	globalMax float64
	low       float64
	high      float64

	dragging bool
	moved    bool
}

func NewRangeSlider(globalMin, globalMax float64) *RangeSlider {
	if globalMax < globalMin {
		globalMax = globalMin
	}
	return &RangeSlider{
		globalMin: globalMin,
		globalMax: globalMax,
		low:       globalMin,
		high:      globalMax,
	}
}

func (s *RangeSlider) Low() float64  { return s.low }
func (s *RangeSlider) High() float64 { return s.high }

// MinGap is 5% of the global range.
func (s *RangeSlider) MinGap() float64 {
	return (s.globalMax - s.globalMin) * 0.05
}

// SetBounds replaces the global range after a filter change. Handles are
// clamped into the new bounds and pushed apart to keep the gap.
func (s *RangeSlider) SetBounds(globalMin, globalMax float64) {
	if globalMax < globalMin {
		globalMax = globalMin
	}
	s.globalMin, s.globalMax = globalMin, globalMax
	s.low = clamp(s.low, globalMin, globalMax)
	s.high = clamp(s.high, globalMin, globalMax)
	if s.high-s.low < s.MinGap() {
		s.low, s.high = globalMin, globalMax
	}
}

func (s *RangeSlider) BeginDrag() {
	s.dragging = true
	s.moved = false
}

// DragLow moves the lower handle. The handle never crosses within MinGap of
// the upper one and never leaves the global range.
func (s *RangeSlider) DragLow(v float64) {
	v = clamp(v, s.globalMin, s.high-s.MinGap())
	if v != s.low {
		s.low = v
		s.moved = true
	}
}

// DragHigh moves the upper handle under the mirrored constraints.
func (s *RangeSlider) DragHigh(v float64) {
	v = clamp(v, s.low+s.MinGap(), s.globalMax)
	if v != s.high {
		s.high = v
		s.moved = true
	}
}

// EndDrag finishes the gesture. changed is true only when a handle actually
// moved; the caller commits the range to the filters exactly then, so one
// gesture produces at most one query.
func (s *RangeSlider) EndDrag() (low, high float64, changed bool) {
	changed = s.dragging && s.moved
	s.dragging = false
	s.moved = false
	return s.low, s.high, changed
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
