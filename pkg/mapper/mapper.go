package mapper

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/ports"
)

// Mapper turns avatars into skeletons.
type Mapper struct {
	logger        *slog.Logger
	skipUnchanged bool
}

// Option configures the Mapper.
type Option func(*Mapper)

// WithLogger configures a logger for classification diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// SkipUnchangedStitch makes StitchCurrentPose a no-op when the live rig
// already sits at the top of the restored undo stack.
func SkipUnchangedStitch() Option {
	return func(m *Mapper) {
		m.skipUnchanged = true
	}
}

// New creates a Mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build classifies the avatar into a new skeleton.
// It returns domain.ErrNotHumanoid when the avatar has no humanoid mapping or
// no hip node; every later anomaly is logged and tolerated.
func (m *Mapper) Build(av ports.Avatar) (*domain.Skeleton, error) {
	if !av.IsHumanoid() {
		return nil, fmt.Errorf("%s: %w", av.Name(), domain.ErrNotHumanoid)
	}
	hipNode := av.HumanBone(domain.RoleHips)
	if hipNode == nil {
		return nil, fmt.Errorf("%s has no hip node: %w", av.Name(), domain.ErrNotHumanoid)
	}

	s := domain.NewSkeleton(av.Name())
	m.addBones(s, av)

	hip := s.Bone(hipNode.Name())
	if hip == nil {
		return nil, fmt.Errorf("%s: hip %q is not a bone: %w", av.Name(), hipNode.Name(), domain.ErrNotHumanoid)
	}
	s.Hip = hip.ModelName
	hip.IsRoot = true

	m.assignRoles(s, av)
	m.pruneAncestors(s, hipNode)
	m.linkLiveParents(s)
	markSkeletal(s)
	markHands(s)
	if dropped := s.Normalize(); len(dropped) > 0 {
		m.logger.Warn("Bones unreachable from hip were dropped",
			"model", s.ModelName,
			"bones", dropped,
		)
	}
	m.validate(s)
	s.InitGeometry()

	m.logger.Debug("Skeleton built",
		"model", s.ModelName,
		"bones", s.Len(),
		"roles", len(s.Roles()),
	)
	return s, nil
}

// Rebind re-resolves every bone's node by name against a different live
// graph and re-derives the transient snapshots. Bones whose name is missing
// from the new graph stay unbound.
func (m *Mapper) Rebind(s *domain.Skeleton, av ports.Avatar) {
	s.UnbindAll()
	for _, n := range gatherNodes(av) {
		b := s.Bone(n.Name())
		if b == nil || b.Node() != nil {
			continue
		}
		b.Bind(n)
	}
	s.Reinit()

	if unbound := s.Unbound(); len(unbound) > 0 {
		m.logger.Warn("Bones could not be rebound",
			"model", s.ModelName,
			"bones", unbound,
		)
	}
}

// LoadFromPersisted restores a decoded skeleton against a live avatar:
// hip, node handles, history back-references, parent links, snapshots,
// undo order and finally the stitch of the live pose.
func (m *Mapper) LoadFromPersisted(s *domain.Skeleton, av ports.Avatar) error {
	if err := m.resolveHip(s, av); err != nil {
		return err
	}
	s.UnbindAll()
	for _, n := range gatherNodes(av) {
		if b := s.Bone(n.Name()); b != nil && b.Node() == nil {
			b.Bind(n)
		}
	}
	s.History.Bind(s)
	m.linkPersistedParents(s)
	s.Reinit()
	m.validate(s)
	s.History.ReverseUndo()
	s.History.ReverseRedo()
	m.StitchCurrentPose(s)
	return nil
}

// LoadInactive restores a decoded skeleton for the context that is not
// live. Nodes stay unbound until the context is activated with Rebind.
func (m *Mapper) LoadInactive(s *domain.Skeleton) error {
	if err := m.resolveHip(s, nil); err != nil {
		return err
	}
	s.History.Bind(s)
	m.linkPersistedParents(s)
	s.History.ReverseUndo()
	s.History.ReverseRedo()
	return nil
}

// StitchCurrentPose commits the live pose and rewrites that command's
// previous geometry, node by node, to the current geometry of the command
// below it, so the next Undo lands on the pose that was on top before
// loading. It does nothing when the undo stack is empty, or when
// SkipUnchangedStitch is set and the live rig already sits at the top.
func (m *Mapper) StitchCurrentPose(s *domain.Skeleton) {
	if s.History.UndoCount() == 0 {
		return
	}
	below := s.History.UndoEntries()[0]
	if m.skipUnchanged && below.MatchesLive(s.Tolerance) {
		m.logger.Debug("Live pose matches history, nothing to stitch", "model", s.ModelName)
		return
	}
	top := s.Commit()
	if top == nil {
		return
	}

	type pair struct{ top, below *domain.MoveCmd }
	stack := []pair{{top, below}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.top.Previous = p.below.Current

		n := len(p.top.Children)
		if len(p.below.Children) != n {
			m.logger.Warn("History shape differs from skeleton, stitching common prefix",
				"model", s.ModelName,
				"bone", p.top.ModelName,
				"live_children", n,
				"stored_children", len(p.below.Children),
			)
			n = min(n, len(p.below.Children))
		}
		for i := 0; i < n; i++ {
			stack = append(stack, pair{p.top.Children[i], p.below.Children[i]})
		}
	}
}

// gatherNodes returns every skinned node followed by every humanoid-table
// node, without duplicates.
func gatherNodes(av ports.Avatar) []domain.SceneNode {
	seen := make(map[domain.SceneNode]bool)
	var out []domain.SceneNode
	add := func(n domain.SceneNode) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
	}
	for _, n := range av.SkinnedBones() {
		add(n)
	}
	for _, r := range domain.Roles() {
		add(av.HumanBone(r))
	}
	return out
}

func (m *Mapper) addBones(s *domain.Skeleton, av ports.Avatar) {
	for _, n := range gatherNodes(av) {
		b := domain.NewBone(n.Name())
		b.Bind(n)
		if !s.AddBone(b) {
			m.logger.Warn("Duplicate bone name, keeping first",
				"model", s.ModelName,
				"bone", n.Name(),
			)
		}
	}
}

func (m *Mapper) assignRoles(s *domain.Skeleton, av ports.Avatar) {
	s.ClearRoles()
	for _, r := range domain.Roles() {
		n := av.HumanBone(r)
		if n == nil {
			continue
		}
		if s.Bone(n.Name()) == nil {
			m.logger.Warn("Humanoid node has no bone",
				"model", s.ModelName,
				"role", r,
				"node", n.Name(),
			)
			continue
		}
		if err := s.AssignRole(r, n.Name()); err != nil {
			m.logger.Warn("Role not assigned", "model", s.ModelName, "err", err)
		}
	}
}

// pruneAncestors removes the bones found among the children of every
// ancestor of the hip node, the ancestors included. These are scene
// scaffolding, not part of the humanoid chain.
func (m *Mapper) pruneAncestors(s *domain.Skeleton, hipNode domain.SceneNode) {
	var pruned []string
	for cur := hipNode; cur != nil; cur = cur.Parent() {
		parent := cur.Parent()
		if parent == nil {
			break
		}
		for _, c := range parent.Children() {
			if c.Name() == s.Hip {
				continue
			}
			if s.RemoveBone(c.Name()) {
				pruned = append(pruned, c.Name())
			}
		}
	}
	if len(pruned) > 0 {
		m.logger.Debug("Pruned scaffolding bones", "model", s.ModelName, "bones", pruned)
	}
}

func (m *Mapper) linkLiveParents(s *domain.Skeleton) {
	s.ClearLinks()
	for _, b := range s.Bones() {
		if b.ModelName == s.Hip {
			continue
		}
		node := b.Node()
		if node == nil {
			m.logger.Warn("Bone has no node", "model", s.ModelName, "bone", b.ModelName)
			continue
		}
		parent := node.Parent()
		if parent == nil {
			m.logger.Warn("Bone has no parent node", "model", s.ModelName, "bone", b.ModelName)
			continue
		}
		if s.Bone(parent.Name()) == nil {
			m.logger.Warn("Parent node is not a bone",
				"model", s.ModelName,
				"bone", b.ModelName,
				"parent", parent.Name(),
			)
			continue
		}
		if err := s.Link(b.ModelName, parent.Name()); err != nil {
			m.logger.Warn("Parent not linked", "model", s.ModelName, "err", err)
		}
	}
}

func (m *Mapper) linkPersistedParents(s *domain.Skeleton) {
	s.ClearLinks()
	for _, b := range s.Bones() {
		if b.ModelName == s.Hip {
			continue
		}
		if b.ParentName == "" {
			m.logger.Error("Bone has no persisted parent", "model", s.ModelName, "bone", b.ModelName)
			continue
		}
		if err := s.Link(b.ModelName, b.ParentName); err != nil {
			m.logger.Error("Parent not linked", "model", s.ModelName, "err", err)
		}
	}
}

// resolveHip sets the hip from the role index, falling back to the live
// avatar's hip node when the role is missing.
func (m *Mapper) resolveHip(s *domain.Skeleton, av ports.Avatar) error {
	if b := s.BoneByRole(domain.RoleHips); b != nil {
		s.Hip = b.ModelName
		return nil
	}
	if av != nil {
		if n := av.HumanBone(domain.RoleHips); n != nil && s.Bone(n.Name()) != nil {
			s.Hip = n.Name()
			return nil
		}
	}
	if s.HipBone() != nil {
		return nil
	}
	return fmt.Errorf("skeleton %s has no hip bone: %w", s.ModelName, domain.ErrInvalidDocument)
}

func (m *Mapper) validate(s *domain.Skeleton) {
	for _, name := range s.Unbound() {
		m.logger.Error("Bone node is missing", "model", s.ModelName, "bone", name)
	}
}

// markSkeletal flags every role bone and its ancestors up to the hip, so
// unmapped bones sitting between canonical bones are kept in the chain.
func markSkeletal(s *domain.Skeleton) {
	for _, b := range s.Bones() {
		if b.Role == domain.RoleNone || b.Role == domain.RoleHips {
			continue
		}
		seen := make(map[string]bool)
		for cur := b; cur != nil && !seen[cur.ModelName]; cur = s.Bone(cur.Parent()) {
			seen[cur.ModelName] = true
			cur.IsSkeletal = true
			if cur.ModelName == s.Hip {
				break
			}
		}
	}
}

// markHands flags the canonical hands and every descendant of them.
func markHands(s *domain.Skeleton) {
	hand := make(map[string]bool)
	s.Walk(func(b *domain.Bone, _ int) bool {
		if b.Role.IsHand() || hand[b.Parent()] {
			b.IsHandBone = true
			hand[b.ModelName] = true
		}
		return true
	})
}
