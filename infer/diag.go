package infer

import (
	"math"

	"github.com/chuanzhidong/bambi/buffer"
)

// splitRHat compares the first and second halves of a coordinate's recent
// history window: a potential-scale-reduction style statistic that tends to
// 1 as the halves agree. Returns NaN until the window has filled.
func splitRHat(h *buffer.CircularFloat) float64 {
	first := h.FirstHalf()
	second := h.SecondHalf()
	if first == nil || second == nil {
		return math.NaN()
	}

	m1, v1, n := halfMoments(first)
	m2, v2, _ := halfMoments(second)
	if n < 2 {
		return math.NaN()
	}

	w := (v1 + v2) / 2
	if w < 1e-12 {
		return 1
	}

	mean := (m1 + m2) / 2
	b := (m1-mean)*(m1-mean) + (m2-mean)*(m2-mean)

	nf := float64(n)
	varEst := w*(nf-1)/nf + b
	return math.Sqrt(varEst / w)
}

func halfMoments(it *buffer.CircularFloatIterator) (mean, variance float64, n int) {
	var sum, sumSq float64
	for it.Next() {
		v := it.Value()
		sum += v
		sumSq += v * v
		n++
	}
	if n < 1 {
		return 0, 0, 0
	}
	mean = sum / float64(n)
	variance = sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance, n
}

// worstRHat reports, per coordinate, the largest split R-hat across chains
func worstRHat(chains []*chain) []float64 {
	if len(chains) < 1 {
		return nil
	}

	d := len(chains[0].history)
	out := make([]float64, d)
	for j := 0; j < d; j++ {
		worst := math.NaN()
		for _, c := range chains {
			r := splitRHat(c.history[j])
			if math.IsNaN(worst) || r > worst {
				worst = r
			}
		}
		out[j] = worst
	}
	return out
}
