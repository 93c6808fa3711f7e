// Package stats implements an optional statistics side-channel:
// per-thread ADS query counters, node-visit and triangle-per-cone-query
// histograms, and render-loop timers. The core accepts this as an
// optional sink interface; no process-wide singleton is required.
//
// Grounded on
// original_source/include/wt/util/statistics_collector/stat_counter.hpp
// and src/util/statistics_collector/stat_histogram.cpp.
package stats

import (
	"sync/atomic"

	"github.com/samber/lo"
)

// Sink is the side-channel the ADS and integrator call into when
// present; a nil Sink disables all bookkeeping, matching the nilable
// *ads.QueryStats convention ads/traverse.go already uses for its
// six-counter struct.
type Sink interface {
	Record(category string, count uint64)
	Histogram(name string, bucket int)
}

// Counter is a saturating (never overflows past the native word size)
// accumulator, the Go rendering of stat_counter.hpp's atomic counter.
type Counter struct {
	v uint64
}

// Add accumulates delta, saturating at the maximum uint64 value instead
// of wrapping on overflow.
func (c *Counter) Add(delta uint64) {
	for {
		old := atomic.LoadUint64(&c.v)
		next := old + delta
		if next < old {
			next = ^uint64(0)
		}
		if atomic.CompareAndSwapUint64(&c.v, old, next) {
			return
		}
	}
}

// Value returns the counter's current value.
func (c *Counter) Value() uint64 { return atomic.LoadUint64(&c.v) }

// Histogram is a fixed-bucket-count frequency histogram, used for
// "triangles returned per cone query" and "nodes visited per query."
type Histogram struct {
	buckets []uint64
	overflow uint64
}

// NewHistogram returns a histogram with the given number of buckets;
// Observe(n) increments bucket n, or the overflow counter if n is out
// of range.
func NewHistogram(buckets int) *Histogram {
	return &Histogram{buckets: make([]uint64, buckets)}
}

func (h *Histogram) Observe(n int) {
	if n < 0 || n >= len(h.buckets) {
		atomic.AddUint64(&h.overflow, 1)
		return
	}
	atomic.AddUint64(&h.buckets[n], 1)
}

// Buckets returns a snapshot of the histogram's bucket counts.
func (h *Histogram) Buckets() []uint64 {
	out := make([]uint64, len(h.buckets))
	for i := range h.buckets {
		out[i] = atomic.LoadUint64(&h.buckets[i])
	}
	return out
}

// Overflow returns the count of observations that fell outside every
// bucket.
func (h *Histogram) Overflow() uint64 { return atomic.LoadUint64(&h.overflow) }

// Counters is a concrete Sink: six intersection-test categories
// (ray-interior, ray-leaf, cone-interior, cone-leaf, cone-subtree-
// harvest, ball), plus two frequency histograms.
//
// One Counters is allocated per render-worker thread; a process-wide
// total of the six category counters is obtained by calling Merge
// across every thread's instance after the render completes. The two
// histograms are not aggregated.
type Counters struct {
	RayInterior   Counter
	RayLeaf       Counter
	ConeInterior  Counter
	ConeLeaf      Counter
	ConeSubtree   Counter
	Ball          Counter

	TrianglesPerConeQuery *Histogram
	NodesVisitedPerQuery  *Histogram
}

// NewCounters returns a zeroed Counters with its two histograms sized
// for a verbose-statistics mode.
func NewCounters(histogramBuckets int) *Counters {
	return &Counters{
		TrianglesPerConeQuery: NewHistogram(histogramBuckets),
		NodesVisitedPerQuery:  NewHistogram(histogramBuckets),
	}
}

// Record implements Sink by dispatching on the six recognized category
// names; unrecognized categories are silently dropped, since this is
// an additive, best-effort side channel.
func (c *Counters) Record(category string, count uint64) {
	switch category {
	case "ray-interior":
		c.RayInterior.Add(count)
	case "ray-leaf":
		c.RayLeaf.Add(count)
	case "cone-interior":
		c.ConeInterior.Add(count)
	case "cone-leaf":
		c.ConeLeaf.Add(count)
	case "cone-subtree":
		c.ConeSubtree.Add(count)
	case "ball":
		c.Ball.Add(count)
	}
}

// Histogram implements Sink.
func (c *Counters) Histogram(name string, bucket int) {
	switch name {
	case "triangles-per-cone-query":
		c.TrianglesPerConeQuery.Observe(bucket)
	case "nodes-visited-per-query":
		c.NodesVisitedPerQuery.Observe(bucket)
	}
}

// Merge folds o's six category counters into c, used to aggregate
// per-thread Counters after a render completes; o's histograms are not
// merged into c's.
func (c *Counters) Merge(o *Counters) {
	c.RayInterior.Add(o.RayInterior.Value())
	c.RayLeaf.Add(o.RayLeaf.Value())
	c.ConeInterior.Add(o.ConeInterior.Value())
	c.ConeLeaf.Add(o.ConeLeaf.Value())
	c.ConeSubtree.Add(o.ConeSubtree.Value())
	c.Ball.Add(o.Ball.Value())
}

// MergeAll folds a render loop's per-worker Counters slice into one
// process-wide total, the aggregation step left to the caller once the
// render completes. Uses lo.ForEach over Merge rather than a
// hand-rolled accumulator loop.
func MergeAll(buckets int, all []*Counters) *Counters {
	total := NewCounters(buckets)
	lo.ForEach(all, func(c *Counters, _ int) {
		if c != nil {
			total.Merge(c)
		}
	})
	return total
}

// TotalIntersectionTests sums every per-category counter into one
// grand total, used for an "intersection tests per second" throughput
// report.
func (c *Counters) TotalIntersectionTests() uint64 {
	return lo.Sum([]uint64{
		c.RayInterior.Value(), c.RayLeaf.Value(),
		c.ConeInterior.Value(), c.ConeLeaf.Value(),
		c.ConeSubtree.Value(), c.Ball.Value(),
	})
}
