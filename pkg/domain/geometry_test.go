package domain_test

import (
	"testing"

	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAvatarTransform_FromNode(t *testing.T) {
	root := memory.NewNode("root")
	root.SetLocalPosition(mgl64.Vec3{0, 1, 0})
	child := root.AddChild(memory.NewNode("child"))
	child.SetLocalPosition(mgl64.Vec3{1, 0, 0})

	g := domain.TransformOf(child)
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, g.Position)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, g.LocalPosition)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, g.Scale)
	assert.True(t, g.EqualNode(child))

	child.SetLocalPosition(mgl64.Vec3{2, 0, 0})
	assert.False(t, g.EqualNode(child))

	g.SetFromNode(child)
	assert.True(t, g.EqualNode(child))
}

func TestAvatarTransform_Equality(t *testing.T) {
	a := domain.IdentityTransform()
	b := a
	assert.True(t, a.Equal(b), "copies compare equal")

	b.Position[0] = 1e-9
	assert.False(t, a.Equal(b), "comparison is exact")
	assert.True(t, a.ApproxEqual(b, 1e-6))
	assert.False(t, a.ApproxEqual(b, 0), "zero tolerance is exact")

	b.Rotation = mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	assert.False(t, a.ApproxEqual(b, 1e-6))

	var c domain.AvatarTransform
	c.Set(b)
	assert.True(t, c.Equal(b))
}

func TestNewAvatarTransform(t *testing.T) {
	q := mgl64.QuatRotate(1, mgl64.Vec3{0, 0, 1})
	g := domain.NewAvatarTransform(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6}, q, q, mgl64.Vec3{2, 2, 2})
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, g.Position)
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, g.LocalPosition)
	assert.Equal(t, q, g.Rotation)
	assert.Equal(t, q, g.LocalRotation)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, g.Scale)
}
