package pipeline

import (
	"math"
	"testing"
)

func TestSoftmax_SumsToOne(t *testing.T) {
	t.Parallel()

	in := map[string]float64{
		"happiness": 0.7,
		"anxiety":   0.1,
		"sadness":   0.3,
		"anger":     -0.2,
		"fatigue":   0.0,
		"fear":      1.4,
	}
	out := Softmax(in)

	if len(out) != len(in) {
		t.Fatalf("len(out)=%d want %d", len(out), len(in))
	}
	sum := 0.0
	for name, v := range out {
		if _, ok := in[name]; !ok {
			t.Fatalf("unexpected category %q", name)
		}
		if v <= 0 || v >= 1 {
			t.Fatalf("out[%q]=%v not in (0,1)", name, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("sum=%v", sum)
	}
}

func TestSoftmax_EmptyInput(t *testing.T) {
	t.Parallel()

	out := Softmax(nil)
	if len(out) != 0 {
		t.Fatalf("out=%v", out)
	}
	out = Softmax(map[string]float64{})
	if len(out) != 0 {
		t.Fatalf("out=%v", out)
	}
}

func TestSoftmax_SharpensDominantCategory(t *testing.T) {
	t.Parallel()

	out := Softmax(map[string]float64{"calm": 0.9, "fear": 0.1})
	if out["calm"] <= 0.5 {
		t.Fatalf("calm=%v, want > 0.5", out["calm"])
	}
	if out["calm"] <= out["fear"] {
		t.Fatalf("calm=%v fear=%v", out["calm"], out["fear"])
	}
}

func TestSoftmax_LargeScoresDoNotOverflow(t *testing.T) {
	t.Parallel()

	out := Softmax(map[string]float64{"a": 500, "b": 499})
	for name, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("out[%q]=%v", name, v)
		}
	}
	if out["a"] <= out["b"] {
		t.Fatalf("a=%v b=%v", out["a"], out["b"])
	}
}

func TestDominant(t *testing.T) {
	t.Parallel()

	name, score := Dominant(map[string]float64{"nature": 0.8, "urban": 0.2})
	if name != "nature" || score != 0.8 {
		t.Fatalf("got %q %v", name, score)
	}
	name, score = Dominant(nil)
	if name != "" || score != 0 {
		t.Fatalf("got %q %v", name, score)
	}
}
