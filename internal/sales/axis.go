package sales

import "math"

const (
	// DefaultMax is the axis maximum used when there is no positive data
	DefaultMax = 50.0
	// DefaultTickCount is the number of intervals on a chart axis
	DefaultTickCount = 5
	// DefaultChartHeight is the bar area height in pixels
	DefaultChartHeight = 230.0

	maxPadding = 1.1
	minFloor   = 0.8
)

// Axis is the value range of a chart
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bounds computes the chart axis over every value in series. The maximum is
// padded by 10% and the minimum drops to 80% of the smallest value, never
// below zero.
func Bounds(series []Series) Axis {
	first := true
	var lo, hi float64
	for _, s := range series {
		for _, d := range s.Dishes {
			if first {
				lo, hi = d.Value, d.Value
				first = false
				continue
			}
			lo = math.Min(lo, d.Value)
			hi = math.Max(hi, d.Value)
		}
	}

	if first {
		return Axis{Min: 0, Max: DefaultMax}
	}

	axis := Axis{Min: math.Max(0, lo*minFloor), Max: hi * maxPadding}
	if hi <= 0 {
		axis.Max = DefaultMax
	}
	return axis
}

// Range is Max-Min
func (a Axis) Range() float64 {
	return a.Max - a.Min
}

// Ticks returns n+1 evenly spaced labels from Min to Max, rounded to one decimal
func Ticks(a Axis, n int) []float64 {
	if n <= 0 {
		n = DefaultTickCount
	}
	step := a.Range() / float64(n)
	ticks := make([]float64, n+1)
	for i := range ticks {
		ticks[i] = math.Round((a.Min+step*float64(i))*10) / 10
	}
	return ticks
}

// BarHeight scales v into [0, px] relative to the axis
func BarHeight(v float64, a Axis, px float64) float64 {
	r := a.Range()
	if r <= 0 {
		return 0
	}
	h := (v - a.Min) / r * px
	return math.Max(0, math.Min(px, h))
}
