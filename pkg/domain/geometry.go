package domain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SceneNode is the narrow view of a host scene-graph node used by the core.
// Implementations belong to the host (see adapters/memory for an in-process one).
type SceneNode interface {
	Name() string
	// Parent returns nil at the scene root.
	Parent() SceneNode
	Children() []SceneNode
	// Destroyed reports whether the host has released the node.
	Destroyed() bool

	Position() mgl64.Vec3
	LocalPosition() mgl64.Vec3
	Rotation() mgl64.Quat
	LocalRotation() mgl64.Quat
	LocalScale() mgl64.Vec3

	SetPosition(mgl64.Vec3)
	SetLocalPosition(mgl64.Vec3)
	SetRotation(mgl64.Quat)
	SetLocalRotation(mgl64.Quat)
	SetLocalScale(mgl64.Vec3)
}

// AvatarTransform is a serializable snapshot of a node's geometry.
// Equality is exact field-wise comparison.
type AvatarTransform struct {
	Position      mgl64.Vec3 `json:"position"`
	LocalPosition mgl64.Vec3 `json:"local_position"`
	Rotation      mgl64.Quat `json:"rotation"`
	LocalRotation mgl64.Quat `json:"local_rotation"`
	Scale         mgl64.Vec3 `json:"scale"`
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() AvatarTransform {
	return AvatarTransform{
		Rotation:      mgl64.QuatIdent(),
		LocalRotation: mgl64.QuatIdent(),
		Scale:         mgl64.Vec3{1, 1, 1},
	}
}

// NewAvatarTransform builds a snapshot from its five components.
func NewAvatarTransform(position, localPosition mgl64.Vec3, rotation, localRotation mgl64.Quat, scale mgl64.Vec3) AvatarTransform {
	return AvatarTransform{
		Position:      position,
		LocalPosition: localPosition,
		Rotation:      rotation,
		LocalRotation: localRotation,
		Scale:         scale,
	}
}

// TransformOf reads the present geometry of a live node.
func TransformOf(node SceneNode) AvatarTransform {
	return NewAvatarTransform(
		node.Position(),
		node.LocalPosition(),
		node.Rotation(),
		node.LocalRotation(),
		node.LocalScale(),
	)
}

// Equal compares two snapshots exactly.
func (t AvatarTransform) Equal(other AvatarTransform) bool {
	return t == other
}

// EqualNode compares the snapshot exactly against a live node.
func (t AvatarTransform) EqualNode(node SceneNode) bool {
	return t == TransformOf(node)
}

// ApproxEqual compares two snapshots with an absolute per-component tolerance.
// A tolerance of zero (or less) falls back to exact comparison.
func (t AvatarTransform) ApproxEqual(other AvatarTransform, tol float64) bool {
	if tol <= 0 {
		return t == other
	}
	return vecWithin(t.Position, other.Position, tol) &&
		vecWithin(t.LocalPosition, other.LocalPosition, tol) &&
		quatWithin(t.Rotation, other.Rotation, tol) &&
		quatWithin(t.LocalRotation, other.LocalRotation, tol) &&
		vecWithin(t.Scale, other.Scale, tol)
}

// Set overwrites every field from another snapshot.
func (t *AvatarTransform) Set(other AvatarTransform) {
	*t = other
}

// SetFromNode overwrites every field from a live node.
func (t *AvatarTransform) SetFromNode(node SceneNode) {
	*t = TransformOf(node)
}

// writeTo pushes the snapshot onto a live node. World values are written
// first so that the local values, written last, are exact.
func (t AvatarTransform) writeTo(node SceneNode) {
	node.SetPosition(t.Position)
	node.SetRotation(t.Rotation)
	node.SetLocalPosition(t.LocalPosition)
	node.SetLocalRotation(t.LocalRotation)
	node.SetLocalScale(t.Scale)
}

func vecWithin(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func quatWithin(a, b mgl64.Quat, tol float64) bool {
	return math.Abs(a.W-b.W) <= tol && vecWithin(a.V, b.V, tol)
}
