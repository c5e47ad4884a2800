package frames

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform maps positions and velocities from a frame A to a frame B at one instant.
//
// With R the rotation, t the translation, v the translation rate and ω the angular
// velocity of B relative to A expressed in B:
//
//	x_B = R (x_A + t)
//	v_B = R (v_A + v) − ω × x_B
//
// Transforms are values: the rotation matrix is never modified once built.
type Transform struct {
	instant     time.Time
	rotation    *r3.Mat
	translation r3.Vec
	velocity    r3.Vec
	angularVel  r3.Vec
}

// IdentityTransform returns the transform which changes nothing, valid at the instant.
func IdentityTransform(at time.Time) Transform {
	return Transform{instant: at.UTC(), rotation: identity}
}

// NewTransform returns a new transform. The rotation is copied; a nil rotation is the identity.
func NewTransform(at time.Time, rotation *r3.Mat, translation, velocity, angularVelocity r3.Vec) Transform {
	rot := identity
	if rotation != nil {
		rot = clone(rotation)
	}
	return Transform{instant: at.UTC(), rotation: rot, translation: translation, velocity: velocity, angularVel: angularVelocity}
}

// RotationTransform returns a pure rotation, with ω the angular velocity of the target frame.
func RotationTransform(at time.Time, rotation *r3.Mat, angularVelocity r3.Vec) Transform {
	return NewTransform(at, rotation, r3.Vec{}, r3.Vec{}, angularVelocity)
}

// TranslationTransform returns a pure translation: x_B = x_A + t, v_B = v_A + v.
func TranslationTransform(at time.Time, translation, velocity r3.Vec) Transform {
	return NewTransform(at, nil, translation, velocity, r3.Vec{})
}

// newTransform does not copy the rotation, which the caller must not keep.
func newTransform(at time.Time, rotation *r3.Mat, translation, velocity, angularVelocity r3.Vec) Transform {
	return Transform{instant: at, rotation: rotation, translation: translation, velocity: velocity, angularVel: angularVelocity}
}

func (tr Transform) rot() *r3.Mat {
	if tr.rotation == nil {
		return identity
	}
	return tr.rotation
}

// Instant returns the instant at which this transform is valid.
func (tr Transform) Instant() time.Time { return tr.instant }

// Rotation returns a copy of the rotation matrix.
func (tr Transform) Rotation() *r3.Mat { return clone(tr.rot()) }

// Translation returns the translation, expressed in the source frame.
func (tr Transform) Translation() r3.Vec { return tr.translation }

// Velocity returns the translation rate, expressed in the source frame.
func (tr Transform) Velocity() r3.Vec { return tr.velocity }

// AngularVelocity returns the angular velocity of the target frame relative to the source, expressed in the target.
func (tr Transform) AngularVelocity() r3.Vec { return tr.angularVel }

// Inverse returns the transform from B to A.
func (tr Transform) Inverse() Transform {
	R := tr.rot()
	Rt := R.MulVec(tr.translation)
	return newTransform(tr.instant,
		transpose(R),
		r3.Scale(-1, Rt),
		r3.Sub(r3.Cross(tr.angularVel, Rt), R.MulVec(tr.velocity)),
		r3.Scale(-1, R.MulVecTrans(tr.angularVel)),
	)
}

// Compose returns the transform applying tr (A to B) then next (B to C).
func (tr Transform) Compose(next Transform) (Transform, error) {
	if !tr.instant.Equal(next.instant) {
		return Transform{}, fmt.Errorf("%w: %s and %s", ErrInstantMismatch,
			tr.instant.Format(time.RFC3339Nano), next.instant.Format(time.RFC3339Nano))
	}
	return tr.compose(next), nil
}

func (tr Transform) compose(next Transform) Transform {
	R1, R2 := tr.rot(), next.rot()
	rot := r3.NewMat(nil)
	rot.Mul(R2, R1)
	return newTransform(tr.instant,
		rot,
		r3.Add(tr.translation, R1.MulVecTrans(next.translation)),
		r3.Add(tr.velocity, R1.MulVecTrans(r3.Add(next.velocity, r3.Cross(tr.angularVel, next.translation)))),
		r3.Add(next.angularVel, R2.MulVec(tr.angularVel)),
	)
}

// ApplyToPosition returns the position x, given in A, expressed in B.
func (tr Transform) ApplyToPosition(x r3.Vec) r3.Vec {
	return tr.rot().MulVec(r3.Add(x, tr.translation))
}

// ApplyToVelocity returns the velocity v of the point at x, both given in A, expressed in B.
func (tr Transform) ApplyToVelocity(x, v r3.Vec) r3.Vec {
	R := tr.rot()
	xB := R.MulVec(r3.Add(x, tr.translation))
	return r3.Sub(R.MulVec(r3.Add(v, tr.velocity)), r3.Cross(tr.angularVel, xB))
}

// ApplyToVector rotates a free vector, such as a direction, from A to B.
func (tr Transform) ApplyToVector(x r3.Vec) r3.Vec {
	return tr.rot().MulVec(x)
}

// IsIdentity returns whether this transform changes no position nor velocity, within tol.
func (tr Transform) IsIdentity(tol float64) bool {
	return mat.EqualApprox(tr.rot(), identity, tol) &&
		vecEqualWithin(tr.translation, r3.Vec{}, tol) &&
		vecEqualWithin(tr.velocity, r3.Vec{}, tol) &&
		vecEqualWithin(tr.angularVel, r3.Vec{}, tol)
}

// EqualWithin returns whether both transforms are valid at the same instant and agree within tol.
func (tr Transform) EqualWithin(o Transform, tol float64) bool {
	return tr.instant.Equal(o.instant) &&
		mat.EqualApprox(tr.rot(), o.rot(), tol) &&
		vecEqualWithin(tr.translation, o.translation, tol) &&
		vecEqualWithin(tr.velocity, o.velocity, tol) &&
		vecEqualWithin(tr.angularVel, o.angularVel, tol)
}

func (tr Transform) String() string {
	R := tr.rot()
	return fmt.Sprintf("Transform@%s R=[%v %v %v] t=%v v=%v ω=%v", tr.instant.Format(time.RFC3339Nano),
		R.VecRow(0), R.VecRow(1), R.VecRow(2), tr.translation, tr.velocity, tr.angularVel)
}
