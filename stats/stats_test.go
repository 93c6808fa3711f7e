package stats

import "testing"

func TestCounterSaturatesInsteadOfOverflowing(t *testing.T) {
	var c Counter
	c.Add(^uint64(0))
	c.Add(1)
	if got := c.Value(); got != ^uint64(0) {
		t.Fatalf("Value() = %d, want max uint64 (saturated, not wrapped)", got)
	}
}

func TestHistogramOverflowBucket(t *testing.T) {
	h := NewHistogram(4)
	h.Observe(1)
	h.Observe(1)
	h.Observe(99)
	h.Observe(-1)
	if got := h.Buckets()[1]; got != 2 {
		t.Fatalf("Buckets()[1] = %d, want 2", got)
	}
	if got := h.Overflow(); got != 2 {
		t.Fatalf("Overflow() = %d, want 2", got)
	}
}

func TestMergeAllFoldsPerThreadCounters(t *testing.T) {
	a := NewCounters(4)
	a.Record("ray-interior", 3)
	b := NewCounters(4)
	b.Record("ray-interior", 5)
	b.Record("ball", 2)

	total := MergeAll(4, []*Counters{a, nil, b})
	if got := total.RayInterior.Value(); got != 8 {
		t.Fatalf("RayInterior = %d, want 8", got)
	}
	if got := total.Ball.Value(); got != 2 {
		t.Fatalf("Ball = %d, want 2", got)
	}
}

func TestTotalIntersectionTestsSumsEveryCategory(t *testing.T) {
	c := NewCounters(4)
	c.Record("ray-interior", 1)
	c.Record("ray-leaf", 2)
	c.Record("cone-interior", 3)
	c.Record("cone-leaf", 4)
	c.Record("cone-subtree", 5)
	c.Record("ball", 6)
	if got := c.TotalIntersectionTests(); got != 21 {
		t.Fatalf("TotalIntersectionTests() = %d, want 21", got)
	}
}
