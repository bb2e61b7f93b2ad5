package rand

import (
	"testing"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 1000; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d diverged: %v != %v", i, av, bv)
		}
	}
}

func TestSetSeedRestartsStream(t *testing.T) {
	r := NewRandom(7)
	first := make([]float64, 16)
	for i := range first {
		first[i] = r.Float64()
	}
	r.SetSeed(7)
	for i := range first {
		if v := r.Float64(); v != first[i] {
			t.Fatalf("draw %d after reseed: got %v, want %v", i, v, first[i])
		}
	}
}

func TestFloat64Bounds(t *testing.T) {
	r := NewRandom(1)
	for i := 0; i < 10000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, v)
		}
	}
}

func TestFloat64RangeBounds(t *testing.T) {
	r := NewRandom(2)
	for i := 0; i < 10000; i++ {
		if v := r.Float64Range(-3, 5); v < -3 || v >= 5 {
			t.Fatalf("draw %d out of [-3,5): %v", i, v)
		}
	}
}

func TestFloat64RangeEmptyStillConsumes(t *testing.T) {
	a, b := NewRandom(3), NewRandom(3)
	if v := a.Float64Range(2, 2); v != 2 {
		t.Fatalf("empty range returned %v, want 2", v)
	}
	b.Float64()
	if av, bv := a.Float64(), b.Float64(); av != bv {
		t.Fatalf("empty-range draw did not consume a stream value: %v != %v", av, bv)
	}
}

func TestInt31nBounds(t *testing.T) {
	r := NewRandom(4)
	seen := make(map[int32]bool)
	for i := 0; i < 10000; i++ {
		v := r.Int31n(8)
		if v < 0 || v >= 8 {
			t.Fatalf("draw %d out of [0,8): %v", i, v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected all 8 values to occur, got %d", len(seen))
	}
}

func TestRangeInclusive(t *testing.T) {
	r := NewRandom(5)
	lo, hi := false, false
	for i := 0; i < 10000; i++ {
		v := r.Range(3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("draw %d out of [3,6]: %v", i, v)
		}
		lo = lo || v == 3
		hi = hi || v == 6
	}
	if !lo || !hi {
		t.Fatalf("expected both bounds to occur (lo=%v hi=%v)", lo, hi)
	}
}

func TestChanceExtremes(t *testing.T) {
	r := NewRandom(6)
	for i := 0; i < 100; i++ {
		if r.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !r.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestChanceConvergence(t *testing.T) {
	r := NewRandom(8)
	hits := 0
	const draws = 100000
	for i := 0; i < draws; i++ {
		if r.Chance(0.25) {
			hits++
		}
	}
	freq := float64(hits) / draws
	if freq < 0.23 || freq > 0.27 {
		t.Fatalf("Chance(0.25) frequency %v outside [0.23, 0.27]", freq)
	}
}
