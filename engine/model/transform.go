package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the instantaneous pose of an animated node, decomposed into
// translation, rotation, and scale. It is the unit of exchange between the
// sampler and the renderer: the sampler produces one per node per frame, and
// the renderer consumes Matrix4 (or the raw components) for its per-draw
// transform constant.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// NewTransform returns the identity transform: zero translation, identity
// rotation, and unit scale. Its Matrix4 is the 4x4 identity matrix.
//
// Returns:
//   - Transform: the identity transform
func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix4 composes the transform into a 4x4 affine matrix using the standard
// TRS convention: scale is applied first, then rotation, then translation
// (matrix = T * R * S). Pure function of the three fields.
//
// Returns:
//   - mgl32.Mat4: the composed column-major transform matrix
func (t Transform) Matrix4() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Accumulate combines this transform with another by quaternion-multiplying
// the rotations (renormalized to counter floating-point drift),
// component-multiplying the scales, and adding the translations. This is a
// naive additive blend for layering poses (e.g. a base pose plus a
// single-channel override); it is NOT true transform concatenation and must
// not be used for parent-child hierarchy math.
//
// Parameters:
//   - other: the transform to blend onto this one
//
// Returns:
//   - Transform: the blended transform
func (t Transform) Accumulate(other Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(other.Translation),
		Rotation:    t.Rotation.Mul(other.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			t.Scale.X() * other.Scale.X(),
			t.Scale.Y() * other.Scale.Y(),
			t.Scale.Z() * other.Scale.Z(),
		},
	}
}
