package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// zeroNormEpsilon rejects quaternion inputs too close to zero length to
// normalize meaningfully.
const zeroNormEpsilon = 1e-6

// QuatFromXYZW maps four named components in glTF buffer order (x, y, z, w)
// into a quaternion. This replaces reinterpreting a raw 4-float buffer as a
// quaternion: the component order is an explicit contract here, independent
// of the math library's in-memory layout (mathgl stores w first). Non-finite
// components and near-zero-length inputs are rejected; valid inputs are
// normalized so downstream interpolation always starts from unit quaternions.
//
// Parameters:
//   - x, y, z: the vector part, in buffer order
//   - w: the scalar part, last in buffer order
//
// Returns:
//   - mgl32.Quat: the unit quaternion
//   - error: model.ErrInvariantViolation if the components cannot form a rotation
func QuatFromXYZW(x, y, z, w float32) (mgl32.Quat, error) {
	for _, c := range [4]float32{x, y, z, w} {
		if f := float64(c); math.IsNaN(f) || math.IsInf(f, 0) {
			return mgl32.Quat{}, fmt.Errorf("loader: non-finite quaternion component %v: %w", c, model.ErrInvariantViolation)
		}
	}
	q := mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	if q.Len() < zeroNormEpsilon {
		return mgl32.Quat{}, fmt.Errorf("loader: zero-length quaternion (%v, %v, %v, %v): %w", x, y, z, w, model.ErrInvariantViolation)
	}
	return q.Normalize(), nil
}
