package model

import "errors"

// ErrInvariantViolation indicates a track was misused by the loader or host
// application: a timeline or channel was set more than once, or channels with
// incompatible timelines were combined on one track. This is a programming or
// asset-authoring defect, not a runtime condition to tolerate; callers should
// surface it immediately rather than retry.
var ErrInvariantViolation = errors.New("animation invariant violation")

// ErrMissingData indicates an animator was ticked on a track that lacks a
// usable timeline or a required channel. The caller decides whether to skip
// animating that node for the frame.
var ErrMissingData = errors.New("animation data missing")
