package rig

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"github.com/Carmen-Shannon/anim-go/engine/loader"
	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// slideTrack builds a duration-2 track whose translation x equals the
// playback time, with identity rotation and unit scale.
func slideTrack(t *testing.T) animator.KeyframeTrack {
	t.Helper()
	track := animator.NewKeyframeTrack()
	if err := track.SetTimeline([]float32{0, 1, 2}); err != nil {
		t.Fatalf("SetTimeline() unexpected error: %v", err)
	}
	if err := track.SetChannel(animator.TranslationSamples([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}})); err != nil {
		t.Fatalf("SetChannel(translation) unexpected error: %v", err)
	}
	if err := track.SetChannel(animator.RotationSamples([]mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatIdent(), mgl32.QuatIdent()})); err != nil {
		t.Fatalf("SetChannel(rotation) unexpected error: %v", err)
	}
	if err := track.SetChannel(animator.ScaleSamples([]mgl32.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})); err != nil {
		t.Fatalf("SetChannel(scale) unexpected error: %v", err)
	}
	return track
}

// =============================================================================
// AddNode Tests
// =============================================================================

func TestRig_AddNode_Duplicate(t *testing.T) {
	r := NewRig()
	track := slideTrack(t)

	if err := r.AddNode(0, track); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}
	err := r.AddNode(0, track)
	if !errors.Is(err, model.ErrInvariantViolation) {
		t.Errorf("duplicate AddNode() = %v, want ErrInvariantViolation", err)
	}
	if r.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", r.NodeCount())
	}
}

// =============================================================================
// Advance Tests
// =============================================================================

func TestRig_Advance(t *testing.T) {
	track := slideTrack(t)
	r := NewRig()
	for id := 0; id < 3; id++ {
		// One shared immutable track, three independent playback cursors.
		if err := r.AddNode(id, track, animator.WithStartTime(float32(id)*0.25)); err != nil {
			t.Fatalf("AddNode() unexpected error: %v", err)
		}
	}

	if err := r.Advance(0.5); err != nil {
		t.Fatalf("Advance() unexpected error: %v", err)
	}

	for id := 0; id < 3; id++ {
		pose, ok := r.Pose(id)
		if !ok {
			t.Fatalf("Pose(%d) not found", id)
		}
		wantX := 0.5 + float32(id)*0.25
		if !mgl32.FloatEqualThreshold(pose.Translation.X(), wantX, 1e-6) {
			t.Errorf("node %d translation x = %v, want %v", id, pose.Translation.X(), wantX)
		}

		matrix, ok := r.Matrix(id)
		if !ok {
			t.Fatalf("Matrix(%d) not found", id)
		}
		if !matrix.ApproxEqualThreshold(mgl32.Translate3D(wantX, 0, 0), 1e-5) {
			t.Errorf("node %d matrix = %v, want translate(%v, 0, 0)", id, matrix, wantX)
		}
	}
}

func TestRig_Advance_ParallelMatchesSerial(t *testing.T) {
	const nodes = 128

	build := func(threshold int) Rig {
		r := NewRig(WithParallelThreshold(threshold), WithSampleWorkers(4))
		track := slideTrack(t)
		for id := 0; id < nodes; id++ {
			if err := r.AddNode(id, track, animator.WithStartTime(float32(id)*0.01)); err != nil {
				t.Fatalf("AddNode() unexpected error: %v", err)
			}
		}
		return r
	}

	parallel := build(1)       // every pass uses the pool
	serial := build(nodes * 2) // never reaches the pool
	for _, r := range []Rig{parallel, serial} {
		if err := r.Advance(0.3); err != nil {
			t.Fatalf("Advance() unexpected error: %v", err)
		}
	}

	for id := 0; id < nodes; id++ {
		p, _ := parallel.Pose(id)
		s, _ := serial.Pose(id)
		if !p.Translation.ApproxEqualThreshold(s.Translation, 1e-6) {
			t.Errorf("node %d: parallel translation %v != serial %v", id, p.Translation, s.Translation)
		}
	}
}

func TestRig_Advance_CollectsNodeErrors(t *testing.T) {
	r := NewRig()
	if err := r.AddNode(0, slideTrack(t)); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}
	// Node 1 has no channels; its tick fails every frame.
	empty := animator.NewKeyframeTrack()
	if err := empty.SetTimeline([]float32{0, 1}); err != nil {
		t.Fatalf("SetTimeline() unexpected error: %v", err)
	}
	if err := r.AddNode(1, empty); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}

	err := r.Advance(0.5)
	if !errors.Is(err, model.ErrMissingData) {
		t.Errorf("Advance() error = %v, want ErrMissingData", err)
	}

	// The healthy node still advanced this frame.
	pose, _ := r.Pose(0)
	if !mgl32.FloatEqualThreshold(pose.Translation.X(), 0.5, 1e-6) {
		t.Errorf("node 0 translation x = %v, want 0.5", pose.Translation.X())
	}
}

// =============================================================================
// Matrix Output Tests
// =============================================================================

func TestRig_MatrixBytes(t *testing.T) {
	r := NewRig()
	if err := r.AddNode(0, slideTrack(t)); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}
	if err := r.Advance(1.0); err != nil {
		t.Fatalf("Advance() unexpected error: %v", err)
	}

	payload := r.MatrixBytes(0)
	if len(payload) != 64 {
		t.Fatalf("MatrixBytes() length = %d, want 64", len(payload))
	}

	// The payload is the column-major matrix verbatim; element 12 is the
	// translation x, which equals the playback time 1.0.
	matrix, _ := r.Matrix(0)
	for i := 0; i < 16; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
		if got != matrix[i] {
			t.Fatalf("payload element %d = %v, want %v", i, got, matrix[i])
		}
	}
	if tx := math.Float32frombits(binary.LittleEndian.Uint32(payload[48:52])); tx != 1.0 {
		t.Errorf("payload translation x = %v, want 1.0", tx)
	}

	if r.MatrixBytes(99) != nil {
		t.Error("MatrixBytes() for unknown node should be nil")
	}
}

func TestRig_UnknownNodeLookups(t *testing.T) {
	r := NewRig()
	if _, ok := r.Pose(5); ok {
		t.Error("Pose() for unknown node should report not found")
	}
	if _, ok := r.Matrix(5); ok {
		t.Error("Matrix() for unknown node should report not found")
	}
}

// =============================================================================
// Builder Tests
// =============================================================================

func TestRig_WithClip(t *testing.T) {
	clip := &loader.Clip{Name: "slide", Duration: 2, Tracks: make(map[int]animator.KeyframeTrack)}
	for id := 0; id < 4; id++ {
		clip.Tracks[id] = slideTrack(t)
	}

	r := NewRig(WithClip(clip, animator.WithSpeed(2)))
	if r.NodeCount() != 4 {
		t.Fatalf("NodeCount() = %d, want 4", r.NodeCount())
	}

	if err := r.Advance(0.25); err != nil {
		t.Fatalf("Advance() unexpected error: %v", err)
	}
	pose, _ := r.Pose(2)
	if !mgl32.FloatEqualThreshold(pose.Translation.X(), 0.5, 1e-6) {
		t.Errorf("translation x = %v, want 0.5 with speed 2", pose.Translation.X())
	}
}

func ExampleNewRig() {
	track := animator.NewKeyframeTrack()
	_ = track.SetTimeline([]float32{0, 1})
	_ = track.SetChannel(animator.TranslationSamples([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}))
	_ = track.SetChannel(animator.RotationSamples([]mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatIdent()}))
	_ = track.SetChannel(animator.ScaleSamples([]mgl32.Vec3{{1, 1, 1}, {1, 1, 1}}))

	r := NewRig()
	_ = r.AddNode(0, track)
	_ = r.Advance(0.5)
	pose, _ := r.Pose(0)
	fmt.Printf("x=%.1f\n", pose.Translation.X())
	// Output: x=0.5
}
