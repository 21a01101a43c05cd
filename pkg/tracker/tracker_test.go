package tracker_test

import (
	"testing"
	"time"

	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/aretw0/act/pkg/tracker"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 10 * time.Millisecond

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*tracker.Tracker, *memory.Avatar) {
	t.Helper()
	av := testutils.Minimal(t)
	s, err := mapper.New().Build(av)
	require.NoError(t, err)
	tr := tracker.New(s)
	tr.Reset(epoch)
	return tr, av
}

// run ticks from start to end, one frame apart, calling move on frames
// where shouldMove returns true. It returns the number of commits.
func run(tr *tracker.Tracker, start, end time.Duration, shouldMove func(time.Duration) bool, move func()) int {
	commits := 0
	for at := start; at <= end; at += frame {
		if shouldMove(at) {
			move()
		}
		if tr.Tick(epoch.Add(at)) {
			commits++
		}
	}
	return commits
}

func TestTracker_BurstCommitsOnce(t *testing.T) {
	tr, av := setup(t)
	hips := av.Root().Find("Hips")
	x := 0.0
	drag := func() {
		x += 0.01
		hips.SetLocalPosition(mgl64.Vec3{x, 1, 0})
	}
	during := func(from, to time.Duration) func(time.Duration) bool {
		return func(at time.Duration) bool { return at >= from && at <= to && at%(50*time.Millisecond) == 0 }
	}

	commits := run(tr, frame, time.Second, during(50*time.Millisecond, 500*time.Millisecond), drag)
	assert.Equal(t, 1, commits)
	assert.Equal(t, 1, tr.Skeleton().History.UndoCount())
	assert.False(t, tr.Pending())
}

func TestTracker_TwoBurstsCommitTwice(t *testing.T) {
	tr, av := setup(t)
	spine := av.Root().Find("Spine")
	angle := 0.0
	bend := func() {
		angle += 0.05
		spine.SetLocalRotation(mgl64.QuatRotate(angle, mgl64.Vec3{1, 0, 0}))
	}
	inBurst := func(at time.Duration) bool {
		burst := (at >= 50*time.Millisecond && at <= 300*time.Millisecond) ||
			(at >= 1000*time.Millisecond && at <= 1300*time.Millisecond)
		return burst && at%(40*time.Millisecond) == 0
	}

	commits := run(tr, frame, 2*time.Second, inBurst, bend)
	assert.Equal(t, 2, commits)
	assert.Equal(t, 2, tr.Skeleton().History.UndoCount())
}

func TestTracker_NoChangeNoCommit(t *testing.T) {
	tr, _ := setup(t)
	commits := run(tr, frame, time.Second, func(time.Duration) bool { return false }, func() {})
	assert.Zero(t, commits)
}

func TestTracker_CommitWaitsForWindow(t *testing.T) {
	tr, av := setup(t)
	av.Root().Find("Hips").SetLocalPosition(mgl64.Vec3{0, 2, 0})

	assert.False(t, tr.Tick(epoch.Add(30*time.Millisecond)))
	assert.True(t, tr.Pending())
	assert.False(t, tr.Tick(epoch.Add(230*time.Millisecond)), "window not yet exceeded")
	assert.True(t, tr.Tick(epoch.Add(231*time.Millisecond)))
}

func TestTracker_Options(t *testing.T) {
	tr, av := setup(t)
	tr = tracker.New(tr.Skeleton(), tracker.WithInterval(time.Millisecond), tracker.WithWindow(5*time.Millisecond))
	tr.Reset(epoch)

	av.Root().Find("Hips").SetLocalPosition(mgl64.Vec3{0, 2, 0})
	assert.False(t, tr.Tick(epoch.Add(2*time.Millisecond)))
	assert.True(t, tr.Tick(epoch.Add(8*time.Millisecond)))
}

func TestTracker_Scenario(t *testing.T) {
	tr, av := setup(t)
	s := tr.Skeleton()
	hips := av.Root().Find("Hips")
	before := domain.TransformOf(hips)

	hips.SetLocalPosition(mgl64.Vec3{0.5, 1.2, 0})
	after := domain.TransformOf(hips)

	run(tr, frame, 500*time.Millisecond, func(time.Duration) bool { return false }, func() {})
	require.Equal(t, 1, s.History.UndoCount())

	require.NoError(t, s.Undo())
	tr.Reset(epoch.Add(510 * time.Millisecond))
	assert.Equal(t, before, domain.TransformOf(hips))
	assert.Equal(t, 1, s.History.RedoCount())

	require.NoError(t, s.Redo())
	tr.Reset(epoch.Add(520 * time.Millisecond))
	assert.Equal(t, after, domain.TransformOf(hips))

	commits := run(tr, 530*time.Millisecond, time.Second, func(time.Duration) bool { return false }, func() {})
	assert.Zero(t, commits, "replayed geometry is not committed again")
	assert.Equal(t, 1, s.History.UndoCount())
}
