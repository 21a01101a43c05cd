package domain

import (
	"errors"
	"fmt"
)

// Skeleton is an arena of Bones addressed by model name.
// Parent/child relations are stored as names on each Bone and every
// traversal is an iterative depth-first walk starting at the hip bone.
//
// A Skeleton is not safe for concurrent use.
type Skeleton struct {
	ModelName string
	Hip       string
	History   *History

	// Tolerance is the absolute tolerance used by change detection.
	// Zero keeps exact comparison.
	Tolerance float64

	bones map[string]*Bone
	order []string
	roles map[HumanRole]string
}

// NewSkeleton creates an empty skeleton for the given source model.
func NewSkeleton(modelName string) *Skeleton {
	return &Skeleton{
		ModelName: modelName,
		History:   NewHistory(),
		bones:     make(map[string]*Bone),
		roles:     make(map[HumanRole]string),
	}
}

// AddBone inserts a bone. When the name is already taken the first bone wins
// and AddBone returns false.
func (s *Skeleton) AddBone(b *Bone) bool {
	if _, exists := s.bones[b.ModelName]; exists {
		return false
	}
	s.bones[b.ModelName] = b
	s.order = append(s.order, b.ModelName)
	return true
}

// RemoveBone deletes a bone and every reference to it.
func (s *Skeleton) RemoveBone(name string) bool {
	b, ok := s.bones[name]
	if !ok {
		return false
	}
	delete(s.bones, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for r, n := range s.roles {
		if n == name {
			delete(s.roles, r)
		}
	}
	if p, ok := s.bones[b.parent]; ok {
		for i, c := range p.children {
			if c == name {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	if s.Hip == name {
		s.Hip = ""
	}
	return true
}

// Bone returns the bone registered under name, or nil.
func (s *Skeleton) Bone(name string) *Bone {
	return s.bones[name]
}

// BoneByRole resolves a canonical role through the role index.
func (s *Skeleton) BoneByRole(r HumanRole) *Bone {
	name, ok := s.roles[r]
	if !ok || name == "" {
		return nil
	}
	return s.bones[name]
}

// HipBone returns the root of the tree, or nil when unset.
func (s *Skeleton) HipBone() *Bone {
	if s.Hip == "" {
		return nil
	}
	return s.bones[s.Hip]
}

// Len returns the number of bones.
func (s *Skeleton) Len() int { return len(s.bones) }

// Names returns the bone keys in map order.
func (s *Skeleton) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Bones returns the bones in map order.
func (s *Skeleton) Bones() []*Bone {
	out := make([]*Bone, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.bones[n])
	}
	return out
}

// AssignRole records r for the named bone. It refuses names that are not in
// the bone map and roles that are already taken.
func (s *Skeleton) AssignRole(r HumanRole, name string) error {
	if r == RoleNone || !r.Valid() {
		return fmt.Errorf("cannot assign role %v", r)
	}
	b, ok := s.bones[name]
	if !ok {
		return fmt.Errorf("role %v: no bone named %q", r, name)
	}
	if existing, taken := s.roles[r]; taken && existing != name {
		return fmt.Errorf("role %v already assigned to %q", r, existing)
	}
	b.Role = r
	b.IsHumanBone = true
	s.roles[r] = name
	return nil
}

// Roles returns a copy of the role index.
func (s *Skeleton) Roles() map[HumanRole]string {
	out := make(map[HumanRole]string, len(s.roles))
	for r, n := range s.roles {
		out[r] = n
	}
	return out
}

// ClearRoles empties the role index and resets every bone's role.
func (s *Skeleton) ClearRoles() {
	s.roles = make(map[HumanRole]string)
	for _, b := range s.bones {
		b.Role = RoleNone
		b.IsHumanBone = false
	}
}

// Link makes parent the parent of child, appending child to its child list.
func (s *Skeleton) Link(child, parent string) error {
	c, ok := s.bones[child]
	if !ok {
		return fmt.Errorf("link: no bone named %q", child)
	}
	p, ok := s.bones[parent]
	if !ok {
		return fmt.Errorf("link: no parent bone named %q", parent)
	}
	c.parent = parent
	c.ParentName = parent
	p.addChild(child)
	return nil
}

// ClearLinks drops every parent/child relation, keeping ParentName.
func (s *Skeleton) ClearLinks() {
	for _, b := range s.bones {
		b.clearLinks()
	}
}

// Walk visits the tree depth-first from the hip, parents before children and
// children in list order. Returning false from fn skips that bone's subtree.
func (s *Skeleton) Walk(fn func(b *Bone, depth int) bool) {
	hip := s.HipBone()
	if hip == nil {
		return
	}
	type frame struct {
		bone  *Bone
		depth int
	}
	stack := []frame{{hip, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.bone, f.depth) {
			continue
		}
		for i := len(f.bone.children) - 1; i >= 0; i-- {
			if c, ok := s.bones[f.bone.children[i]]; ok {
				stack = append(stack, frame{c, f.depth + 1})
			}
		}
	}
}

// each visits every bone reachable from the hip.
func (s *Skeleton) each(fn func(b *Bone)) {
	s.Walk(func(b *Bone, _ int) bool {
		fn(b)
		return true
	})
}

// Normalize rebuilds the key order depth-first from the hip and drops bones
// that are not reachable. It returns the dropped names.
func (s *Skeleton) Normalize() []string {
	var order []string
	reached := make(map[string]bool, len(s.bones))
	s.each(func(b *Bone) {
		order = append(order, b.ModelName)
		reached[b.ModelName] = true
	})
	var dropped []string
	for _, n := range s.order {
		if !reached[n] {
			dropped = append(dropped, n)
		}
	}
	for _, n := range dropped {
		s.RemoveBone(n)
	}
	s.order = order
	return dropped
}

// Ancestors returns the parents of b up to, and excluding, the hip.
func (s *Skeleton) Ancestors(b *Bone) []*Bone {
	var out []*Bone
	seen := map[string]bool{b.ModelName: true}
	for cur := s.bones[b.parent]; cur != nil && cur.ModelName != s.Hip; cur = s.bones[cur.parent] {
		if seen[cur.ModelName] {
			break
		}
		seen[cur.ModelName] = true
		out = append(out, cur)
	}
	return out
}

// RefreshDynamic samples every live node into its bone's dynamic snapshot.
func (s *Skeleton) RefreshDynamic() {
	s.each(func(b *Bone) { b.RefreshDynamic() })
}

// HasChanged reports whether any bone moved since the last sample. Every
// bone's own flag is updated, not only the first changed one.
func (s *Skeleton) HasChanged() bool {
	changed := false
	s.each(func(b *Bone) {
		if b.HasChanged(s.Tolerance) {
			changed = true
		}
	})
	return changed
}

// ResetChangeFlags clears every per-bone flag.
func (s *Skeleton) ResetChangeFlags() {
	s.each(func(b *Bone) { b.ResetChangeFlag() })
}

// Step advances current/previous on every bone.
func (s *Skeleton) Step() {
	s.each(func(b *Bone) { b.Step() })
}

// InitGeometry makes the present pose the rest pose of every bone.
func (s *Skeleton) InitGeometry() {
	for _, b := range s.bones {
		b.RefreshDynamic()
		b.InitGeometry()
	}
}

// Reinit re-reads every bound node, resetting current/previous.
func (s *Skeleton) Reinit() {
	for _, b := range s.bones {
		if b.Bound() {
			b.Reinit()
		}
	}
}

// ResetToOriginal moves every live node back to its rest pose without
// touching the snapshots, so the move is picked up as a regular change.
func (s *Skeleton) ResetToOriginal() error {
	var errs []error
	s.each(func(b *Bone) {
		if err := b.MoveGeometry(b.Original); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", b.ModelName, err))
		}
	})
	return errors.Join(errs...)
}

// SetOriginalToCurrent overwrites the rest pose of every bone. The previous
// rest pose is lost.
func (s *Skeleton) SetOriginalToCurrent() {
	s.each(func(b *Bone) { b.SetOriginalToCurrent() })
}

// Unbound returns, depth-first, the bones without a live node.
func (s *Skeleton) Unbound() []string {
	var out []string
	s.each(func(b *Bone) {
		if !b.Bound() {
			out = append(out, b.ModelName)
		}
	})
	return out
}

// UnbindAll drops every live node reference.
func (s *Skeleton) UnbindAll() {
	for _, b := range s.bones {
		b.Unbind()
	}
}

// Commit records the present current/previous geometry as one history step.
func (s *Skeleton) Commit() *MoveCmd {
	cmd := NewMoveCmd(s)
	if cmd == nil {
		return nil
	}
	s.History.Do(cmd, s.ModelName)
	return cmd
}

// Undo reverts the most recent history step.
func (s *Skeleton) Undo() error { return s.History.Undo(s.ModelName) }

// Redo re-applies the most recently undone step.
func (s *Skeleton) Redo() error { return s.History.Redo(s.ModelName) }

// ApplyPose writes every matching pose bone onto the skeleton. Bones missing
// from the skeleton are skipped.
func (s *Skeleton) ApplyPose(p *Pose) error {
	var errs []error
	for _, pb := range p.Bones {
		b := s.Bone(pb.ModelName)
		if b == nil {
			continue
		}
		if err := b.ApplyGeometry(pb.Geometry); err != nil {
			errs = append(errs, fmt.Errorf("apply pose %s: %w", pb.ModelName, err))
		}
	}
	return errors.Join(errs...)
}

// ApplyOriginals copies the rest pose of every same-named bone of other.
func (s *Skeleton) ApplyOriginals(other *Skeleton) {
	for _, ob := range other.Bones() {
		if b := s.Bone(ob.ModelName); b != nil {
			b.Original = ob.Original
		}
	}
}
