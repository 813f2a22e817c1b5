package animator

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithStartTime is an option builder that sets the initial playback cursor.
//
// Parameters:
//   - t: the starting playback time in seconds
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the start time to an animator
func WithStartTime(t float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.currentTime = t
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier.
//
// Parameters:
//   - speed: the multiplier (1.0 = normal, 0.5 = half speed)
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.speed = speed
	}
}

// WithLoop is an option builder that controls end-of-clip behavior: looping
// animators wrap the cursor back into the clip, non-looping animators clamp
// at the final sample.
//
// Parameters:
//   - loop: whether playback wraps at the clip's end
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the loop mode to an animator
func WithLoop(loop bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.loop = loop
	}
}
