package simd

import "testing"

func TestPadCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 17: 24}
	for in, want := range cases {
		if got := PadCount(in); got != want {
			t.Errorf("PadCount(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestF8Fma(t *testing.T) {
	a := Splat(2)
	b := Splat(3)
	c := Splat(1)
	got := a.Fma(b, c)
	want := Splat(7)
	if got != want {
		t.Errorf("Fma = %v, want %v", got, want)
	}
}

func TestMaskAny(t *testing.T) {
	var m Mask
	if m.Any() {
		t.Errorf("zero mask should report Any() == false")
	}
	m[3] = true
	if !m.Any() {
		t.Errorf("expected Any() == true")
	}
}
