package dtype

import (
	"math"
	"math/cmplx"
)

// Stats holds the density summary written to the MRC header.
type Stats struct {
	Min, Max, Mean, RMS float64
}

// Summarize computes min, max, mean and RMS deviation of data.
// Complex samples are summarized by magnitude; NaNs are skipped.
func Summarize(data any) Stats {
	var s Stats
	var sum, sumSq float64
	n := 0

	add := func(v float64) {
		if math.IsNaN(v) {
			return
		}
		if n == 0 || v < s.Min {
			s.Min = v
		}
		if n == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		sumSq += v * v
		n++
	}

	switch d := data.(type) {
	case []int8:
		for _, v := range d {
			add(float64(v))
		}
	case []int16:
		for _, v := range d {
			add(float64(v))
		}
	case []uint16:
		for _, v := range d {
			add(float64(v))
		}
	case []uint8:
		for _, v := range d {
			add(float64(v))
		}
	case []float32:
		for _, v := range d {
			add(float64(v))
		}
	case []complex64:
		for _, v := range d {
			add(cmplx.Abs(complex128(v)))
		}
	}

	if n == 0 {
		return s
	}
	s.Mean = sum / float64(n)
	if variance := sumSq/float64(n) - s.Mean*s.Mean; variance > 0 {
		s.RMS = math.Sqrt(variance)
	}
	return s
}
