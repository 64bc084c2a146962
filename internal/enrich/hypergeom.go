package enrich

import "math"

// SurvivalFunction returns P(X > k) for X ~ Hypergeometric(N, K, n): a
// population of N items with K successes, n drawn without replacement.
// Parameters outside the distribution's domain yield NaN.
func SurvivalFunction(k, N, K, n int) float64 {
	if N < 0 || K < 0 || n < 0 || K > N || n > N {
		return math.NaN()
	}
	lo := max(0, n-(N-K))
	hi := min(K, n)
	if k < lo {
		return 1
	}
	if k >= hi {
		return 0
	}
	if p, ok := exactTail(k, N, K, n, hi); ok {
		return p
	}
	// Summing from the far tail inwards keeps SF(k) >= SF(k+1) in floating point.
	pmf := pmfTerms(N, K, n, lo, hi)
	sum := 0.0
	for x := hi; x > k; x-- {
		sum += pmf[x-lo]
	}
	return math.Min(sum, 1)
}

// exactTail sums the tail as integer counts over C(N, n). Every count is
// below 2^53, so the result is exact up to the final division. It reports
// false when some binomial does not fit.
func exactTail(k, N, K, n, hi int) (float64, bool) {
	total, ok := exactChoose(N, n)
	if !ok {
		return 0, false
	}
	sum := 0.0
	for x := hi; x > k; x-- {
		a, ok1 := exactChoose(K, x)
		b, ok2 := exactChoose(N-K, n-x)
		if !ok1 || !ok2 {
			return 0, false
		}
		sum += a * b
	}
	return math.Min(sum/total, 1), true
}

// pmfTerms returns P(X = x) for x in [lo, hi]. Only the mode is evaluated
// through log-gamma; the other terms follow from the ratio
// P(x+1)/P(x) = (K-x)(n-x) / ((x+1)(N-K-n+x+1)).
func pmfTerms(N, K, n, lo, hi int) []float64 {
	mode := (n + 1) * (K + 1) / (N + 2)
	mode = max(lo, min(hi, mode))
	out := make([]float64, hi-lo+1)
	out[mode-lo] = math.Exp(lchoose(K, mode) + lchoose(N-K, n-mode) - lchoose(N, n))
	for x := mode; x < hi; x++ {
		r := float64(K-x) * float64(n-x) / (float64(x+1) * float64(N-K-n+x+1))
		out[x+1-lo] = out[x-lo] * r
	}
	for x := mode; x > lo; x-- {
		r := float64(x) * float64(N-K-n+x) / (float64(K-x+1) * float64(n-x+1))
		out[x-1-lo] = out[x-lo] * r
	}
	return out
}

// maxExact is 2^53, the largest range of consecutive integers float64 holds.
const maxExact = 1 << 53

// exactChoose computes C(a, b) when every intermediate product stays below 2^53.
func exactChoose(a, b int) (float64, bool) {
	if b < 0 || b > a {
		return 0, true
	}
	b = min(b, a-b)
	c := 1.0
	for i := 0; i < b; i++ {
		// C(a, i+1) = C(a, i) * (a-i) / (i+1) is an integer at every step.
		num := c * float64(a-i)
		if num >= maxExact {
			return 0, false
		}
		c = num / float64(i+1)
	}
	return c, true
}

// PValue is the probability of observing at least k hits by chance,
// SurvivalFunction(k-1, N, K, n). Degenerate inputs (k <= 0, K <= 0,
// N <= 0, or n > N) yield 1.
func PValue(k, N, K, n int) float64 {
	if k <= 0 || K <= 0 || N <= 0 || K > N || n > N {
		return 1
	}
	p := SurvivalFunction(k-1, N, K, n)
	if math.IsNaN(p) {
		return 1
	}
	return math.Max(0, math.Min(1, p))
}

// lchoose is log(C(a, b)) for 0 <= b <= a.
func lchoose(a, b int) float64 {
	return lgamma(a+1) - lgamma(b+1) - lgamma(a-b+1)
}

func lgamma(x int) float64 {
	v, _ := math.Lgamma(float64(x))
	return v
}
