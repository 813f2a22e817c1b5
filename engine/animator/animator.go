package animator

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// animator is the implementation of the Animator interface.
type animator struct {
	track KeyframeTrack

	currentTime float32
	speed       float32
	loop        bool
}

// Animator owns the playback cursor for one animated node. Each Tick advances
// the cursor, wraps or clamps it against the track's duration, and samples the
// track's three channels into an interpolated pose.
//
// An Animator holds a shared reference to an immutable KeyframeTrack; many
// animators may sample the same track concurrently. A single Animator must
// only be ticked by one goroutine at a time - the cursor is exclusively owned
// by its animated entity.
type Animator interface {
	// Tick advances the playback cursor by deltaTime (scaled by the playback
	// speed) and returns the interpolated pose at the new cursor position.
	// Looping animators wrap the cursor into [0, duration] by modulus, so a
	// delta larger than one full clip duration still lands in range;
	// non-looping animators clamp at the clip end and keep returning the
	// final pose. Translation and scale interpolate component-wise linearly;
	// rotation uses shortest-arc spherical interpolation with the result
	// renormalized.
	//
	// Tick fails with model.ErrMissingData if the track has fewer than 2 time
	// samples or any of the three channels is empty.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last tick in seconds
	//
	// Returns:
	//   - model.Transform: the interpolated pose at the new cursor time
	//   - error: nil on success, model.ErrMissingData if the track cannot be sampled
	Tick(deltaTime float32) (model.Transform, error)

	// Time returns the current playback cursor in seconds.
	//
	// Returns:
	//   - float32: the playback time
	Time() float32

	// SetTime sets the playback cursor directly.
	//
	// Parameters:
	//   - t: the playback time in seconds
	SetTime(t float32)

	// SetSpeed sets the playback speed multiplier applied to every Tick delta.
	//
	// Parameters:
	//   - speed: the multiplier (1.0 = normal, 0.5 = half speed)
	SetSpeed(speed float32)

	// Track returns the track this animator samples.
	//
	// Returns:
	//   - KeyframeTrack: the shared track reference
	Track() KeyframeTrack
}

var _ Animator = &animator{}

// NewAnimator creates an Animator over the given track. By default playback
// starts at time 0, runs at speed 1.0, and loops; use the builder options to
// override.
//
// Parameters:
//   - track: the populated track to sample
//   - options: variadic list of AnimatorBuilderOption functions
//
// Returns:
//   - Animator: a new Animator for one animated entity instance
func NewAnimator(track KeyframeTrack, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		track: track,
		speed: 1.0,
		loop:  true,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) Tick(deltaTime float32) (model.Transform, error) {
	if a.track == nil || a.track.Len() < 2 {
		return model.Transform{}, fmt.Errorf("animator: track needs at least 2 time samples: %w", model.ErrMissingData)
	}
	for _, kind := range []ChannelKind{ChannelTranslation, ChannelRotation, ChannelScale} {
		if !a.track.HasChannel(kind) {
			return model.Transform{}, fmt.Errorf("animator: track has no %s channel: %w", kind, model.ErrMissingData)
		}
	}

	duration := a.track.Duration()
	a.currentTime += deltaTime * a.speed
	if a.loop {
		if a.currentTime > duration || a.currentTime < 0 {
			a.currentTime = float32(math.Mod(float64(a.currentTime), float64(duration)))
			if a.currentTime < 0 {
				a.currentTime += duration
			}
		}
	} else {
		a.currentTime = mgl32.Clamp(a.currentTime, 0, duration)
	}

	return a.sample(a.currentTime), nil
}

// sample interpolates all three channels at time t. Channel presence and
// timeline length are checked by Tick before this is called.
func (a *animator) sample(t float32) model.Transform {
	lo, hi, ratio := a.track.FindBracket(t)

	return model.Transform{
		Translation: lerpVec3(a.track.TranslationAt(lo), a.track.TranslationAt(hi), ratio),
		Rotation:    slerpShortest(a.track.RotationAt(lo), a.track.RotationAt(hi), ratio),
		Scale:       lerpVec3(a.track.ScaleAt(lo), a.track.ScaleAt(hi), ratio),
	}
}

func (a *animator) Time() float32 {
	return a.currentTime
}

func (a *animator) SetTime(t float32) {
	a.currentTime = t
}

func (a *animator) SetSpeed(speed float32) {
	a.speed = speed
}

func (a *animator) Track() KeyframeTrack {
	return a.track
}

// lerpVec3 interpolates component-wise: a + (b - a) * t.
func lerpVec3(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// slerpShortest interpolates between two unit quaternions along the shortest
// arc. When the quaternions' dot product is negative they sit in opposite
// hemispheres of the rotation sphere even though they may represent nearby
// rotations, so one is negated before interpolating. The result is
// renormalized to counter floating-point drift.
func slerpShortest(from, to mgl32.Quat, t float32) mgl32.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl32.QuatSlerp(from, to, t).Normalize()
}
