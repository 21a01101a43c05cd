package domain_test

import (
	"testing"

	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkeleton_Arena(t *testing.T) {
	s := domain.NewSkeleton("Test")
	assert.True(t, s.AddBone(domain.NewBone("Hips")))
	assert.True(t, s.AddBone(domain.NewBone("Spine")))
	assert.True(t, s.AddBone(domain.NewBone("Head")))

	dup := domain.NewBone("Spine")
	dup.IsSkeletal = true
	assert.False(t, s.AddBone(dup), "first bone with a name wins")
	assert.False(t, s.Bone("Spine").IsSkeletal)

	s.Hip = "Hips"
	require.NoError(t, s.Link("Spine", "Hips"))
	require.NoError(t, s.Link("Head", "Spine"))
	assert.Error(t, s.Link("Tail", "Spine"))
	assert.Equal(t, "Spine", s.Bone("Head").ParentName)

	require.NoError(t, s.AssignRole(domain.RoleHead, "Head"))
	assert.Error(t, s.AssignRole(domain.RoleHead, "Spine"), "role already taken")
	assert.Error(t, s.AssignRole(domain.RoleNeck, "Neck"), "unknown bone")
	assert.Same(t, s.Bone("Head"), s.BoneByRole(domain.RoleHead))
	assert.True(t, s.Bone("Head").IsHumanBone)

	var visited []string
	var depths []int
	s.Walk(func(b *domain.Bone, depth int) bool {
		visited = append(visited, b.ModelName)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"Hips", "Spine", "Head"}, visited)
	assert.Equal(t, []int{0, 1, 2}, depths)
	assert.Len(t, s.Ancestors(s.Bone("Head")), 1)

	assert.True(t, s.RemoveBone("Head"))
	assert.Nil(t, s.BoneByRole(domain.RoleHead), "removal clears the role index")
	assert.Empty(t, s.Bone("Spine").Children())
	assert.False(t, s.RemoveBone("Head"))
}

func TestSkeleton_Normalize(t *testing.T) {
	s := domain.NewSkeleton("Test")
	for _, n := range []string{"Orphan", "Leg", "Hips", "Spine"} {
		s.AddBone(domain.NewBone(n))
	}
	s.Hip = "Hips"
	require.NoError(t, s.Link("Spine", "Hips"))
	require.NoError(t, s.Link("Leg", "Hips"))

	dropped := s.Normalize()
	assert.Equal(t, []string{"Orphan"}, dropped)
	assert.Equal(t, []string{"Hips", "Spine", "Leg"}, s.Names())
}

func TestSkeleton_ChangeDetection(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)

	assert.False(t, s.HasChanged())

	av.Root().Find("Spine").SetLocalPosition(mgl64.Vec3{0, 0.5, 0})
	assert.True(t, s.HasChanged())
	assert.True(t, s.Bone("Spine").Changed())
	assert.False(t, s.Bone("Hips").Changed(), "flags are per bone")
	assert.True(t, s.Bone("LeftHand").Changed(), "world position of the child moved too")

	s.RefreshDynamic()
	assert.False(t, s.HasChanged(), "sampling catches up with the live node")

	s.ResetChangeFlags()
	assert.False(t, s.Bone("Spine").Changed())
}

func TestBone_MoveGeometry(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	spine := s.Bone("Spine")
	before := spine.Current

	g := spine.Current
	g.LocalPosition = mgl64.Vec3{0, 0.5, 0}
	require.NoError(t, spine.MoveGeometry(g))

	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, av.Root().Find("Spine").LocalPosition())
	assert.True(t, spine.Changed())
	assert.Equal(t, before, spine.Current, "snapshots are untouched")
	assert.Equal(t, before, spine.Dynamic)

	spine.Unbind()
	assert.ErrorIs(t, spine.MoveGeometry(g), domain.ErrNodeUnbound)
}

func TestSkeleton_Tolerance(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	s.Tolerance = 1e-6

	hips := av.Root().Find("Hips")
	hips.SetLocalPosition(hips.LocalPosition().Add(mgl64.Vec3{1e-9, 0, 0}))
	assert.False(t, s.HasChanged(), "jitter below tolerance is ignored")

	hips.SetLocalPosition(mgl64.Vec3{0, 2, 0})
	assert.True(t, s.HasChanged())
}

func TestSkeleton_ResetAndDefaultPose(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")
	rest := hips.LocalPosition()

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 4, 0}) })

	require.NoError(t, s.ResetToOriginal())
	assert.Equal(t, rest, hips.LocalPosition())
	assert.True(t, s.HasChanged(), "reset is picked up as a regular change")
	assert.Equal(t, mgl64.Vec3{0, 4, 0}, s.Bone("Hips").Current.LocalPosition, "snapshots are untouched")

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 6, 0}) })
	s.SetOriginalToCurrent()
	assert.Equal(t, mgl64.Vec3{0, 6, 0}, s.Bone("Hips").Original.LocalPosition)
}

func TestSkeleton_PoseRoundTrip(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hand := av.Root().Find("LeftHand")

	hand.SetLocalPosition(mgl64.Vec3{0.9, 0.9, 0.9})
	s.RefreshDynamic()
	pose := domain.NewPose(s)
	require.Len(t, pose.Bones, 4)
	assert.Equal(t, "Hips", pose.Bones[0].ModelName)
	assert.Equal(t, domain.RoleLeftHand, pose.Bones[2].Role)

	require.NoError(t, s.ResetToOriginal())
	assert.NotEqual(t, mgl64.Vec3{0.9, 0.9, 0.9}, hand.LocalPosition())

	pose.Bones = append(pose.Bones, domain.PoseBone{ModelName: "Tail", Geometry: domain.IdentityTransform()})
	require.NoError(t, s.ApplyPose(pose), "unknown bones are skipped")
	assert.Equal(t, mgl64.Vec3{0.9, 0.9, 0.9}, hand.LocalPosition())
	assert.Equal(t, 0, s.History.UndoCount(), "applying a pose is not a history step")
}

func TestSkeleton_UnboundOperations(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	s.UnbindAll()

	assert.Len(t, s.Unbound(), 4)
	assert.False(t, s.HasChanged())
	assert.ErrorIs(t, s.ResetToOriginal(), domain.ErrNodeUnbound)
	assert.ErrorIs(t, s.Bone("Hips").ApplyGeometry(domain.IdentityTransform()), domain.ErrNodeUnbound)

	// History can still be built while unbound.
	assert.NotNil(t, s.Commit())
}
