package codec_test

import (
	"testing"

	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/codec"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitMove(s *domain.Skeleton, move func()) *domain.MoveCmd {
	move()
	s.RefreshDynamic()
	s.Step()
	return s.Commit()
}

func TestProject_RoundTrip(t *testing.T) {
	av := testutils.Humanoid(t)
	s, err := mapper.New().Build(av)
	require.NoError(t, err)
	commitMove(s, func() { av.Root().Find("Chest").SetLocalPosition(mgl64.Vec3{0, 0.4, 0}) })

	p := domain.NewProject(s.ModelName)
	p.SceneObjectName = "Robot"
	p.SceneSkeleton = s

	data, err := codec.EncodeProject(p)
	require.NoError(t, err)

	got, err := codec.DecodeProject(data)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Robot", got.SourceModelName)
	assert.Nil(t, got.AvatarSkeleton)

	ds := got.SceneSkeleton
	require.NotNil(t, ds)
	assert.Equal(t, s.Names(), ds.Names(), "bone order survives")
	assert.Equal(t, s.Roles(), ds.Roles())
	assert.Equal(t, "Hips", ds.Hip)
	assert.Equal(t, 1, ds.History.UndoCount())

	for _, b := range s.Bones() {
		db := ds.Bone(b.ModelName)
		require.NotNil(t, db)
		assert.Equal(t, b.Original, db.Original, "geometry is bit exact")
		assert.Equal(t, b.ParentName, db.ParentName)
		assert.Equal(t, b.IsHandBone, db.IsHandBone)
		assert.Equal(t, b.IsSkeletal, db.IsSkeletal)
		assert.Nil(t, db.Node(), "decoded bones are unbound")
	}
}

func TestProject_StackOrderAndStitch(t *testing.T) {
	av := testutils.Minimal(t)
	m := mapper.New()
	s, err := m.Build(av)
	require.NoError(t, err)
	hips := av.Root().Find("Hips")

	first := commitMove(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 2, 0}) })
	second := commitMove(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 3, 0}) })

	p := domain.NewProject(s.ModelName)
	p.SceneSkeleton = s
	data, err := codec.EncodeProject(p)
	require.NoError(t, err)

	got, err := codec.DecodeProject(data)
	require.NoError(t, err)
	ds := got.SceneSkeleton
	assert.Equal(t, first.Current, ds.History.UndoEntries()[0].Current, "decoded stack is reversed")

	live := testutils.Minimal(t)
	require.NoError(t, m.LoadFromPersisted(ds, live))
	assert.Empty(t, ds.Unbound())
	assert.Equal(t, 3, ds.History.UndoCount(), "two stored steps plus the stitched live pose")

	liveHips := live.Root().Find("Hips")
	require.NoError(t, ds.Undo())
	assert.Equal(t, second.Current, domain.TransformOf(liveHips), "first undo lands on the stored top")

	require.NoError(t, ds.Undo())
	assert.Equal(t, first.Current, domain.TransformOf(liveHips))

	require.NoError(t, ds.Undo())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, liveHips.LocalPosition())
}

func TestProject_LoadInactive(t *testing.T) {
	av := testutils.Minimal(t)
	m := mapper.New()
	s, err := m.Build(av)
	require.NoError(t, err)
	commitMove(s, func() { av.Root().Find("Spine").SetLocalPosition(mgl64.Vec3{0, 0.5, 0}) })

	p := domain.NewProject(s.ModelName)
	p.AvatarSkeleton = s
	data, err := codec.EncodeProject(p)
	require.NoError(t, err)
	got, err := codec.DecodeProject(data)
	require.NoError(t, err)

	ds := got.AvatarSkeleton
	require.NoError(t, m.LoadInactive(ds))
	assert.Equal(t, []string{"Spine"}, ds.HipBone().Children())
	assert.Len(t, ds.Unbound(), 4)
	assert.Equal(t, 1, ds.History.UndoCount())

	// Activating the context later binds and replays normally.
	m.Rebind(ds, av)
	require.NoError(t, ds.Undo())
	assert.Equal(t, mgl64.Vec3{0, 0.2, 0}, av.Root().Find("Spine").LocalPosition())
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"no version":     `{"source_model_name":"Robot"}`,
		"future version": `{"version":99,"source_model_name":"Robot"}`,
		"no model":       `{"version":1}`,
		"duplicate bone": `{"version":1,"source_model_name":"R","scene_skeleton":{"bones":[{"model_name":"A","role":"None"},{"model_name":"A","role":"None"}]}}`,
		"dangling role":  `{"version":1,"source_model_name":"R","scene_skeleton":{"bones":[],"roles":{"Hips":"A"}}}`,
		"unknown role":   `{"version":1,"source_model_name":"R","scene_skeleton":{"bones":[{"model_name":"A","role":"Tail"}]}}`,
		"bad hip":        `{"version":1,"source_model_name":"R","scene_skeleton":{"hip":"A","bones":[]}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.DecodeProject([]byte(doc))
			assert.ErrorIs(t, err, domain.ErrInvalidDocument)
		})
	}
}

func TestPose_RoundTrip(t *testing.T) {
	av := testutils.Minimal(t)
	s, err := mapper.New().Build(av)
	require.NoError(t, err)

	pose := domain.NewPose(s)
	data, err := codec.EncodePose(pose)
	require.NoError(t, err)

	got, err := codec.DecodePose(data)
	require.NoError(t, err)
	assert.Equal(t, pose, got)

	_, err = codec.DecodePose([]byte(`{"version":1,"bones":[]}`))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}
