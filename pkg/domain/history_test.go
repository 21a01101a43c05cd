package domain_test

import (
	"testing"

	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, av *memory.Avatar) *domain.Skeleton {
	t.Helper()
	s, err := mapper.New().Build(av)
	require.NoError(t, err)
	return s
}

// edit moves the rig and records the move as one history step, the way the
// tracker does after quiescence.
func edit(s *domain.Skeleton, move func()) *domain.MoveCmd {
	move()
	s.RefreshDynamic()
	s.Step()
	return s.Commit()
}

func livePose(s *domain.Skeleton) map[string]domain.AvatarTransform {
	out := make(map[string]domain.AvatarTransform)
	for _, b := range s.Bones() {
		out[b.ModelName] = domain.TransformOf(b.Node())
	}
	return out
}

func TestHistory_TreeIsomorphism(t *testing.T) {
	s := build(t, testutils.Humanoid(t))
	cmd := s.Commit()
	require.NotNil(t, cmd)

	assert.Equal(t, s.Len(), cmd.Size())

	type pair struct {
		cmd  *domain.MoveCmd
		bone *domain.Bone
	}
	stack := []pair{{cmd, s.HipBone()}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		assert.Equal(t, p.bone.ModelName, p.cmd.ModelName)
		assert.Same(t, p.bone, p.cmd.Bone())
		children := p.bone.Children()
		require.Len(t, p.cmd.Children, len(children), "children of %s", p.bone.ModelName)
		for i, name := range children {
			stack = append(stack, pair{p.cmd.Children[i], s.Bone(name)})
		}
	}
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	av := testutils.Humanoid(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")
	chest := av.Root().Find("Chest")
	hand := av.Root().Find("LeftHand")

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0.3, 1, 0}) })
	edit(s, func() { chest.SetLocalRotation(mgl64.QuatRotate(0.4, mgl64.Vec3{1, 0, 0})) })
	edit(s, func() {
		hand.SetPosition(mgl64.Vec3{0.7, 1.6, 0.2})
		hips.SetLocalRotation(mgl64.QuatRotate(-0.2, mgl64.Vec3{0, 1, 0}))
	})
	require.Equal(t, 3, s.History.UndoCount())

	before := livePose(s)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Undo())
	}
	assert.Equal(t, 0, s.History.UndoCount())
	assert.Equal(t, 3, s.History.RedoCount())
	assert.Equal(t, s.Bone("Hips").Original, domain.TransformOf(hips), "three undos restore the built pose")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Redo())
	}
	assert.Equal(t, before, livePose(s), "redo restores every bone bit for bit")
}

func TestHistory_InvalidateOnNewEdit(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{1, 1, 0}) })
	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{2, 1, 0}) })
	require.NoError(t, s.Undo())
	require.Equal(t, 1, s.History.RedoCount())

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{5, 1, 0}) })
	assert.Equal(t, 0, s.History.RedoCount())

	require.NoError(t, s.Redo())
	assert.Equal(t, mgl64.Vec3{5, 1, 0}, hips.LocalPosition(), "redo after a new edit is a no-op")
}

func TestHistory_EmptyStacksAreNoOps(t *testing.T) {
	s := build(t, testutils.Minimal(t))
	assert.NoError(t, s.Undo())
	assert.NoError(t, s.Redo())
	assert.Equal(t, 0, s.History.UndoCount())
	assert.Equal(t, 0, s.History.RedoCount())
}

func TestHistory_UnboundNodeDoesNotStopSiblings(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")
	hand := av.Root().Find("LeftHand")

	edit(s, func() {
		hips.SetLocalPosition(mgl64.Vec3{0, 2, 0})
		hand.SetLocalPosition(mgl64.Vec3{1, 1, 1})
	})
	hand.Destroy()

	err := s.Undo()
	assert.ErrorIs(t, err, domain.ErrNodeUnbound)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, hips.LocalPosition(), "hip is still reverted")
	assert.Equal(t, 1, s.History.RedoCount(), "the command is moved regardless")
}

func TestHistory_Hooks(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")

	var events []*domain.HistoryEvent
	record := func(e *domain.HistoryEvent) { events = append(events, e) }
	s.History.SetHooks(domain.HistoryHooks{OnCommit: record, OnUndo: record, OnRedo: record})

	edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 3, 0}) })
	require.NoError(t, s.Undo())
	require.NoError(t, s.Redo())

	require.Len(t, events, 3)
	assert.Equal(t, domain.EventCommit, events[0].Type)
	assert.Equal(t, domain.EventUndo, events[1].Type)
	assert.Equal(t, 0, events[1].UndoCount)
	assert.Equal(t, 1, events[1].RedoCount)
	assert.Equal(t, domain.EventRedo, events[2].Type)
	assert.Equal(t, "Minimal", events[2].ModelName)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestHistory_EntriesAndRestore(t *testing.T) {
	av := testutils.Minimal(t)
	s := build(t, av)
	hips := av.Root().Find("Hips")

	first := edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 2, 0}) })
	second := edit(s, func() { hips.SetLocalPosition(mgl64.Vec3{0, 3, 0}) })

	entries := s.History.UndoEntries()
	require.Len(t, entries, 2)
	assert.Same(t, second, entries[0], "entries are listed top first")

	h := domain.NewHistory()
	h.Restore(entries, nil)
	assert.Same(t, first, h.UndoEntries()[0], "restoring a listing reverses it")
	h.ReverseUndo()
	assert.Same(t, second, h.UndoEntries()[0])
}
