package integrator

import (
	"testing"

	"github.com/sixy6e/wavetrace/polarimetric"
)

type fixedSampler struct {
	f64  []float64
	i64 int
}

func (f *fixedSampler) Float64() float64 {
	v := f.f64[f.i64%len(f.f64)]
	f.i64++
	return v
}

func (f *fixedSampler) Vec2() (float64, float64) { return f.Float64(), f.Float64() }

func TestRussianRouletteAlwaysSurvivesBeforeMinDepth(t *testing.T) {
	s := &fixedSampler{f64: []float64{0.999}}
	survive, q := russianRoulette(&Context{RR: true}, rrMinDepth-1, polarimetric.Stokes{I: 1e-9}, s)
	if !survive || q != 1 {
		t.Fatalf("expected guaranteed survival before rrMinDepth, got survive=%v q=%v", survive, q)
	}
}

func TestRussianRouletteKillsZeroThroughput(t *testing.T) {
	s := &fixedSampler{f64: []float64{0}}
	survive, _ := russianRoulette(&Context{RR: true}, rrMinDepth, polarimetric.Stokes{I: 0}, s)
	if survive {
		t.Fatal("expected a zero-throughput path to be killed")
	}
}

func TestRussianRouletteSurvivesHighThroughputLowSample(t *testing.T) {
	s := &fixedSampler{f64: []float64{0}}
	survive, q := russianRoulette(&Context{RR: true}, rrMinDepth, polarimetric.Stokes{I: 10}, s)
	if !survive {
		t.Fatal("expected survival: sample 0 is always below a positive q")
	}
	if q != 0.95 {
		t.Fatalf("q = %v, want capped at 0.95", q)
	}
}

func TestRussianRouletteCulledByHighSample(t *testing.T) {
	s := &fixedSampler{f64: []float64{0.99}}
	survive, _ := russianRoulette(&Context{RR: true}, rrMinDepth, polarimetric.Stokes{I: 0.5}, s)
	if survive {
		t.Fatal("expected culling: sample 0.99 exceeds q=0.5")
	}
}

func TestRussianRouletteDisabledAlwaysSurvives(t *testing.T) {
	s := &fixedSampler{f64: []float64{0.99}}
	survive, q := russianRoulette(&Context{RR: false}, rrMinDepth+5, polarimetric.Stokes{I: 0.5}, s)
	if !survive || q != 1 {
		t.Fatalf("expected guaranteed survival with RR disabled, got survive=%v q=%v", survive, q)
	}
}

func TestRrThroughputUsesAbsIntensity(t *testing.T) {
	if got := rrThroughput(polarimetric.Stokes{I: -3}); got != 3 {
		t.Fatalf("rrThroughput(-3) = %v, want 3", got)
	}
}

func TestUint32nHelperZeroIsSafe(t *testing.T) {
	s := &fixedSampler{f64: []float64{0.5}}
	if got := uint32nHelper(s, 0); got != 0 {
		t.Fatalf("uint32nHelper(n=0) = %v, want 0", got)
	}
}

func TestUint32nHelperInRange(t *testing.T) {
	s := &fixedSampler{f64: []float64{0.99}}
	got := uint32nHelper(s, 4)
	if got < 0 || got >= 4 {
		t.Fatalf("uint32nHelper out of range: %v", got)
	}
}
