package enrich

import (
	"math"
	"math/big"
	"testing"
)

// exactSF computes P(X > k) with rational arithmetic.
func exactSF(k, N, K, n int) float64 {
	num := new(big.Int)
	for x := k + 1; x <= K && x <= n; x++ {
		if n-x > N-K || x < 0 {
			continue
		}
		t := new(big.Int).Binomial(int64(K), int64(x))
		t.Mul(t, new(big.Int).Binomial(int64(N-K), int64(n-x)))
		num.Add(num, t)
	}
	den := new(big.Int).Binomial(int64(N), int64(n))
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}

func TestSurvivalFunctionMatchesExact(t *testing.T) {
	cases := []struct{ N, K, n int }{
		{6, 3, 4},
		{6, 2, 4},
		{60, 12, 20},
		{412, 7, 35},
		{1000, 50, 100},
	}
	for _, c := range cases {
		for k := -1; k <= c.K+1; k++ {
			got := SurvivalFunction(k, c.N, c.K, c.n)
			want := exactSF(k, c.N, c.K, c.n)
			if k < 0 {
				want = 1
			}
			if math.Abs(got-want) > 1e-9*math.Max(1, want) {
				t.Errorf("SF(%d; N=%d K=%d n=%d) = %.15g, want %.15g", k, c.N, c.K, c.n, got, want)
			}
		}
	}
}

func TestSurvivalFunctionDomain(t *testing.T) {
	if !math.IsNaN(SurvivalFunction(1, 5, 6, 2)) {
		t.Fatalf("K > N should be NaN")
	}
	if !math.IsNaN(SurvivalFunction(1, 5, 2, 6)) {
		t.Fatalf("n > N should be NaN")
	}
}

func TestPValueEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		k, N, K, n int
		want       float64
	}{
		{"zero hits", 0, 10, 3, 4, 1},
		{"empty group", 2, 10, 0, 4, 1},
		{"empty population", 1, 0, 0, 0, 1},
		{"draws exceed population", 1, 3, 2, 5, 1},
		{"all drawn", 2, 4, 2, 4, 1},
		{"k beyond support", 4, 10, 3, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PValue(tt.k, tt.N, tt.K, tt.n); got != tt.want {
				t.Fatalf("PValue = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestPValueMonotoneAndBounded(t *testing.T) {
	for _, c := range []struct{ N, K, n int }{{6, 3, 4}, {200, 40, 60}, {5000, 120, 300}, {30, 30, 10}} {
		prev := 2.0
		for k := 0; k <= c.K+2; k++ {
			p := PValue(k, c.N, c.K, c.n)
			if p < 0 || p > 1 || math.IsNaN(p) {
				t.Fatalf("PValue(%d, %+v) = %g out of range", k, c, p)
			}
			if p > prev {
				t.Fatalf("PValue increased at k=%d for %+v: %g > %g", k, c, p, prev)
			}
			prev = p
		}
	}
}

func TestPValueSmallPopulationIsExact(t *testing.T) {
	// 6/15 and 12/15 round to the nearest float64.
	if got := PValue(2, 6, 2, 4); got != 0.4 {
		t.Fatalf("PValue(2, 6, 2, 4) = %v, want 0.4", got)
	}
	if got := PValue(2, 6, 3, 4); got != 0.8 {
		t.Fatalf("PValue(2, 6, 3, 4) = %v, want 0.8", got)
	}
}

func TestSurvivalFunctionLargePopulations(t *testing.T) {
	cases := []struct{ k, N, K, n int }{
		{70, 5000, 300, 1000},
		{5, 20000, 40, 3000},
		{210, 800, 400, 400},
		{190, 800, 400, 400},
	}
	for _, c := range cases {
		got := SurvivalFunction(c.k, c.N, c.K, c.n)
		want := exactSF(c.k, c.N, c.K, c.n)
		if math.Abs(got-want) > 1e-9*want {
			t.Errorf("SF(%d; N=%d K=%d n=%d) = %.15g, want %.15g", c.k, c.N, c.K, c.n, got, want)
		}
	}
}

func TestExactChoose(t *testing.T) {
	if c, ok := exactChoose(6, 4); !ok || c != 15 {
		t.Fatalf("C(6,4) = %v, %v", c, ok)
	}
	if c, ok := exactChoose(3, 5); !ok || c != 0 {
		t.Fatalf("C(3,5) = %v, %v", c, ok)
	}
	if _, ok := exactChoose(800, 400); ok {
		t.Fatalf("C(800,400) does not fit in 53 bits")
	}
}
