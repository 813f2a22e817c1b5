package animator

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// ratioEpsilon guards the interpolation-ratio division against a zero or
// near-zero span between adjacent samples.
const ratioEpsilon = 1e-6

// unitNormEpsilon is the tolerance for validating rotation samples as unit
// quaternions on assignment.
const unitNormEpsilon = 1e-3

// ChannelKind identifies which animated property a set of samples targets.
type ChannelKind int

const (
	// ChannelTranslation targets the node's position (vec3 samples).
	ChannelTranslation ChannelKind = iota
	// ChannelRotation targets the node's orientation (unit quaternion samples).
	ChannelRotation
	// ChannelScale targets the node's per-axis scale (vec3 samples).
	ChannelScale
)

// String returns the lowercase name of the channel kind for error messages.
func (k ChannelKind) String() string {
	switch k {
	case ChannelTranslation:
		return "translation"
	case ChannelRotation:
		return "rotation"
	case ChannelScale:
		return "scale"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ChannelSamples is the tagged variant carrying decoded samples for one
// channel. Exactly one of Vectors or Rotations is populated, matching Kind:
// vector kinds (translation, scale) use Vectors, rotation uses Rotations.
// Construct via TranslationSamples, RotationSamples, or ScaleSamples.
type ChannelSamples struct {
	// Kind identifies the targeted property.
	Kind ChannelKind

	// Vectors holds the samples for vector kinds, index-aligned with the
	// track's timeline.
	Vectors []mgl32.Vec3

	// Rotations holds the samples for the rotation kind, index-aligned with
	// the track's timeline.
	Rotations []mgl32.Quat
}

// TranslationSamples wraps translation samples as a ChannelSamples variant.
//
// Parameters:
//   - vectors: the translation samples, index-aligned with the timeline
//
// Returns:
//   - ChannelSamples: the tagged translation channel
func TranslationSamples(vectors []mgl32.Vec3) ChannelSamples {
	return ChannelSamples{Kind: ChannelTranslation, Vectors: vectors}
}

// RotationSamples wraps rotation samples as a ChannelSamples variant.
//
// Parameters:
//   - rotations: the unit-quaternion samples, index-aligned with the timeline
//
// Returns:
//   - ChannelSamples: the tagged rotation channel
func RotationSamples(rotations []mgl32.Quat) ChannelSamples {
	return ChannelSamples{Kind: ChannelRotation, Rotations: rotations}
}

// ScaleSamples wraps scale samples as a ChannelSamples variant.
//
// Parameters:
//   - vectors: the scale samples, index-aligned with the timeline
//
// Returns:
//   - ChannelSamples: the tagged scale channel
func ScaleSamples(vectors []mgl32.Vec3) ChannelSamples {
	return ChannelSamples{Kind: ChannelScale, Vectors: vectors}
}

// keyframeTrack is the implementation of the KeyframeTrack interface.
type keyframeTrack struct {
	timeline     []float32
	translations []mgl32.Vec3
	rotations    []mgl32.Quat
	scales       []mgl32.Vec3
}

// KeyframeTrack owns one timeline (strictly increasing time samples) and up to
// three channels sampled at those same time indices. It validates that every
// channel shares the one timeline and locates the bracketing sample pair for a
// query time.
//
// A track is populated once during asset load and is read-only afterwards;
// a fully populated track may be shared freely across Animator instances on
// independent goroutines. Population itself (SetTimeline / SetChannel) must
// happen from a single goroutine before any sampling starts.
type KeyframeTrack interface {
	// SetTimeline binds the track's timeline. The first call binds the
	// sequence; a later call with an element-wise identical sequence is a
	// silent no-op, and a later call with a differing sequence fails with
	// model.ErrInvariantViolation (the track is being reused across
	// incompatible channel sets). The sequence must be non-empty, strictly
	// increasing, and start at a nonnegative time.
	//
	// Parameters:
	//   - times: the keyframe times in seconds, strictly increasing
	//
	// Returns:
	//   - error: nil on success, model.ErrInvariantViolation on misuse
	SetTimeline(times []float32) error

	// SetChannel assigns the samples for one channel. Each channel is accepted
	// exactly once; assigning a channel that already holds data fails with
	// model.ErrInvariantViolation, as does a sample count that differs from
	// the bound timeline's length. Rotation samples must be unit quaternions.
	// The timeline must be bound before any channel is set.
	//
	// Parameters:
	//   - samples: the tagged channel samples to assign
	//
	// Returns:
	//   - error: nil on success, model.ErrInvariantViolation on misuse
	SetChannel(samples ChannelSamples) error

	// FindBracket returns the pair of adjacent timeline indices
	// (lo, hi = lo+1) such that timeline[lo] <= t < timeline[hi], plus the
	// interpolation ratio (t - timeline[lo]) / (timeline[hi] - timeline[lo])
	// clamped to [0, 1]. Uses an upper-bound binary search (first sample
	// strictly greater than t), so a query exactly at an interior sample time
	// brackets forward with ratio 0. Queries before the first sample clamp to
	// (0, 1) and queries at or past the last sample clamp to (N-2, N-1); no
	// index past the timeline is ever returned. A near-zero span between the
	// bracketing samples resolves the ratio to 0 instead of producing
	// NaN/Inf. Requires a bound timeline with at least 2 samples; shorter
	// timelines return (0, 0, 0).
	//
	// Parameters:
	//   - t: the query time in seconds
	//
	// Returns:
	//   - int: lo, the index of the sample at or before t
	//   - int: hi, the index of the following sample (lo+1)
	//   - float32: the interpolation ratio in [0, 1]
	FindBracket(t float32) (int, int, float32)

	// Len returns the number of timeline samples (0 if no timeline is bound).
	//
	// Returns:
	//   - int: the timeline length
	Len() int

	// Duration returns the time of the last sample, which is the clip's total
	// duration. Returns 0 if no timeline is bound.
	//
	// Returns:
	//   - float32: the clip duration in seconds
	Duration() float32

	// HasChannel reports whether the given channel holds samples.
	//
	// Parameters:
	//   - kind: the channel to check
	//
	// Returns:
	//   - bool: true if the channel has been populated
	HasChannel(kind ChannelKind) bool

	// TranslationAt returns the translation sample at index i.
	//
	// Parameters:
	//   - i: the sample index
	//
	// Returns:
	//   - mgl32.Vec3: the translation sample
	TranslationAt(i int) mgl32.Vec3

	// RotationAt returns the rotation sample at index i.
	//
	// Parameters:
	//   - i: the sample index
	//
	// Returns:
	//   - mgl32.Quat: the rotation sample
	RotationAt(i int) mgl32.Quat

	// ScaleAt returns the scale sample at index i.
	//
	// Parameters:
	//   - i: the sample index
	//
	// Returns:
	//   - mgl32.Vec3: the scale sample
	ScaleAt(i int) mgl32.Vec3
}

var _ KeyframeTrack = &keyframeTrack{}

// NewKeyframeTrack creates an empty track. Bind a timeline with SetTimeline
// and populate channels with SetChannel before sampling.
//
// Returns:
//   - KeyframeTrack: a new empty track
func NewKeyframeTrack() KeyframeTrack {
	return &keyframeTrack{}
}

func (k *keyframeTrack) SetTimeline(times []float32) error {
	if len(times) == 0 {
		return fmt.Errorf("track: empty timeline: %w", model.ErrInvariantViolation)
	}
	// Keyframe times are nonnegative seconds; this also keeps Duration
	// positive so the looping modulus is well defined.
	if times[0] < 0 {
		return fmt.Errorf("track: negative keyframe time %v: %w", times[0], model.ErrInvariantViolation)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("track: timeline not strictly increasing at index %d (%v then %v): %w",
				i, times[i-1], times[i], model.ErrInvariantViolation)
		}
	}
	if k.timeline != nil {
		// Rebinding the identical sequence is a no-op; anything else means the
		// track is being reused across incompatible channel sets.
		if slices.Equal(k.timeline, times) {
			return nil
		}
		return fmt.Errorf("track: timeline already bound with a different sequence: %w", model.ErrInvariantViolation)
	}
	k.timeline = slices.Clone(times)
	return nil
}

func (k *keyframeTrack) SetChannel(samples ChannelSamples) error {
	if k.timeline == nil {
		return fmt.Errorf("track: %s channel set before timeline: %w", samples.Kind, model.ErrInvariantViolation)
	}

	switch samples.Kind {
	case ChannelTranslation, ChannelScale:
		if err := k.validateCount(samples.Kind, len(samples.Vectors)); err != nil {
			return err
		}
		if samples.Kind == ChannelTranslation {
			k.translations = slices.Clone(samples.Vectors)
		} else {
			k.scales = slices.Clone(samples.Vectors)
		}
	case ChannelRotation:
		if err := k.validateCount(samples.Kind, len(samples.Rotations)); err != nil {
			return err
		}
		for i, q := range samples.Rotations {
			if !mgl32.FloatEqualThreshold(q.Len(), 1, unitNormEpsilon) {
				return fmt.Errorf("track: rotation sample %d is not a unit quaternion (norm %v): %w",
					i, q.Len(), model.ErrInvariantViolation)
			}
		}
		k.rotations = slices.Clone(samples.Rotations)
	default:
		return fmt.Errorf("track: unknown channel kind %d: %w", int(samples.Kind), model.ErrInvariantViolation)
	}
	return nil
}

// validateCount enforces the set-once contract and the timeline length match
// for one channel.
func (k *keyframeTrack) validateCount(kind ChannelKind, count int) error {
	if k.HasChannel(kind) {
		return fmt.Errorf("track: %s channel already set: %w", kind, model.ErrInvariantViolation)
	}
	if count != len(k.timeline) {
		return fmt.Errorf("track: %s channel has %d samples for a timeline of %d: %w",
			kind, count, len(k.timeline), model.ErrInvariantViolation)
	}
	return nil
}

func (k *keyframeTrack) FindBracket(t float32) (int, int, float32) {
	n := len(k.timeline)
	if n < 2 {
		return 0, 0, 0
	}

	// Upper bound: first sample strictly greater than t.
	hi := sort.Search(n, func(i int) bool { return k.timeline[i] > t })
	if hi <= 0 {
		hi = 1
	} else if hi >= n {
		hi = n - 1
	}
	lo := hi - 1

	span := k.timeline[hi] - k.timeline[lo]
	if span <= ratioEpsilon {
		return lo, hi, 0
	}
	ratio := mgl32.Clamp((t-k.timeline[lo])/span, 0, 1)
	return lo, hi, ratio
}

func (k *keyframeTrack) Len() int {
	return len(k.timeline)
}

func (k *keyframeTrack) Duration() float32 {
	if len(k.timeline) == 0 {
		return 0
	}
	return k.timeline[len(k.timeline)-1]
}

func (k *keyframeTrack) HasChannel(kind ChannelKind) bool {
	switch kind {
	case ChannelTranslation:
		return len(k.translations) > 0
	case ChannelRotation:
		return len(k.rotations) > 0
	case ChannelScale:
		return len(k.scales) > 0
	default:
		return false
	}
}

func (k *keyframeTrack) TranslationAt(i int) mgl32.Vec3 {
	return k.translations[i]
}

func (k *keyframeTrack) RotationAt(i int) mgl32.Quat {
	return k.rotations[i]
}

func (k *keyframeTrack) ScaleAt(i int) mgl32.Vec3 {
	return k.scales[i]
}
