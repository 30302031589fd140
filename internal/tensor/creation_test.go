package tensor

import (
	"math/rand/v2"
	"testing"
)

func TestFromSliceLengthMismatch(t *testing.T) {
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("FromSlice with wrong length should fail")
	}
}

func TestFromSliceInfersDType(t *testing.T) {
	f64, _ := FromSlice([]float64{1}, Shape{1})
	i32, _ := FromSlice([]int32{1}, Shape{1})
	if f64.DType() != Float64 || i32.DType() != Int32 {
		t.Errorf("dtypes = %s, %s", f64.DType(), i32.DType())
	}
}

func TestOnesFloat64(t *testing.T) {
	raw, err := Ones(Shape{2, 2}, Float64)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range raw.AsFloat64() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v, want 1", i, v)
		}
	}
}

func TestFullRejectsIntegers(t *testing.T) {
	if _, err := Full(Shape{2}, Int64, 3); err == nil {
		t.Error("Full should reject integer dtypes")
	}
}

func TestRand(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	raw, err := Rand(rng, Shape{100, 50}, Float32, -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range raw.AsFloat32() {
		if v < -1 || v >= 1 {
			t.Fatalf("Rand[%d] = %v, out of [-1, 1)", i, v)
		}
	}

	// Same seed, same values.
	again, _ := Rand(rand.New(rand.NewPCG(1, 2)), Shape{100, 50}, Float32, -1, 1)
	if again.AsFloat32()[4999] != raw.AsFloat32()[4999] {
		t.Error("Rand should be deterministic for a given source")
	}
}

func TestRandIndexSorted(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	idx, err := RandIndex(rng, 50, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	if idx.DType() != Int64 || !idx.Shape().Equal(Shape{50}) {
		t.Fatalf("RandIndex = %v", idx)
	}
	values := idx.AsInt64()
	for i, v := range values {
		if v < 0 || v >= 4 {
			t.Fatalf("index[%d] = %d, out of [0, 4)", i, v)
		}
		if i > 0 && v < values[i-1] {
			t.Fatalf("index not sorted at %d: %v", i, values)
		}
	}

	if _, err := RandIndex(rng, 5, 0, false); err == nil {
		t.Error("RandIndex with high <= 0 should fail")
	}
}
