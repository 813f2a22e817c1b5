package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSliceToBytes(t *testing.T) {
	if got := SliceToBytes[float32](nil); got != nil {
		t.Errorf("SliceToBytes(nil) = %v, want nil", got)
	}

	data := []float32{1.5, -2, 0}
	got := SliceToBytes(data)
	if len(got) != 12 {
		t.Fatalf("SliceToBytes() length = %d, want 12", len(got))
	}
	if first := math.Float32frombits(binary.LittleEndian.Uint32(got[0:4])); first != 1.5 {
		t.Errorf("first element = %v, want 1.5", first)
	}
}

func TestStructToBytes(t *testing.T) {
	matrix := [16]float32{0: 1, 5: 1, 10: 1, 15: 1}
	got := StructToBytes(&matrix)
	if len(got) != 64 {
		t.Fatalf("StructToBytes() length = %d, want 64", len(got))
	}
	if diag := math.Float32frombits(binary.LittleEndian.Uint32(got[60:64])); diag != 1 {
		t.Errorf("last diagonal element = %v, want 1", diag)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 3); got != 7 {
		t.Errorf("Coalesce() = %d, want 7", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce() all-zero = %d, want 0", got)
	}
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Errorf("Coalesce() = %q, want %q", got, "fallback")
	}
}
