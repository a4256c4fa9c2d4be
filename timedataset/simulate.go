package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n points spaced by interval starting at start.
func GenerateT(n int, interval time.Duration, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.Add(interval*time.Duration(i)))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return Series(y)
}

// GenerateTrendY grows by slope per day since the first time point.
func GenerateTrendY(t []time.Time, slope float64) Series {
	y := make([]float64, len(t))
	start := StartTime(t)
	for i := range t {
		y[i] = slope * t[i].Sub(start).Hours() / 24.0
	}
	return Series(y)
}

func GenerateWaveY(t []time.Time, amp float64, period time.Duration, order float64) Series {
	y := make([]float64, len(t))
	periodSec := period.Seconds()
	for i := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*order/periodSec*float64(t[i].Unix()))
	}
	return Series(y)
}

// GenerateNoise draws normal noise with the given scale from a seeded source.
func GenerateNoise(t []time.Time, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, len(t))
	for i := range t {
		y[i] = r.NormFloat64() * scale
	}
	return Series(y)
}
