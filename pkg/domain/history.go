package domain

import (
	"errors"
	"fmt"
	"time"
)

// MoveCmd is one node of a whole-tree history record. Its children mirror the
// bone's children, in order, at the time the command was created.
type MoveCmd struct {
	ModelName string          `json:"model_name"`
	Current   AvatarTransform `json:"current"`
	Previous  AvatarTransform `json:"previous"`
	Children  []*MoveCmd      `json:"children"`

	bone *Bone
}

// NewMoveCmd snapshots the skeleton tree from the hip. It returns nil for a
// skeleton without a hip bone.
func NewMoveCmd(s *Skeleton) *MoveCmd {
	hip := s.HipBone()
	if hip == nil {
		return nil
	}
	root := newMoveNode(hip)
	type frame struct {
		bone *Bone
		cmd  *MoveCmd
	}
	stack := []frame{{hip, root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range f.bone.children {
			child := s.bones[name]
			if child == nil {
				continue
			}
			c := newMoveNode(child)
			f.cmd.Children = append(f.cmd.Children, c)
			stack = append(stack, frame{child, c})
		}
	}
	return root
}

func newMoveNode(b *Bone) *MoveCmd {
	return &MoveCmd{
		ModelName: b.ModelName,
		Current:   b.Current,
		Previous:  b.Previous,
		bone:      b,
	}
}

// Bone returns the bone the command is bound to, or nil.
func (c *MoveCmd) Bone() *Bone { return c.bone }

// Walk visits the command tree depth-first, parents first.
func (c *MoveCmd) Walk(fn func(*MoveCmd)) {
	stack := []*MoveCmd{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Size returns the number of nodes in the command tree.
func (c *MoveCmd) Size() int {
	n := 0
	c.Walk(func(*MoveCmd) { n++ })
	return n
}

// MatchesLive reports whether every node of the command tree is bound and
// its live node sits at the recorded current geometry, within tol.
func (c *MoveCmd) MatchesLive(tol float64) bool {
	match := true
	c.Walk(func(n *MoveCmd) {
		if !match {
			return
		}
		if n.bone == nil || !n.bone.Bound() || !TransformOf(n.bone.Node()).ApproxEqual(n.Current, tol) {
			match = false
		}
	})
	return match
}

// bind resolves every node's bone by name.
func (c *MoveCmd) bind(s *Skeleton) {
	c.Walk(func(n *MoveCmd) { n.bone = s.Bone(n.ModelName) })
}

// apply writes the selected geometry onto every node's bone. A node that
// cannot be applied is reported; its siblings and children still run.
func (c *MoveCmd) apply(pick func(*MoveCmd) AvatarTransform) []error {
	var errs []error
	c.Walk(func(n *MoveCmd) {
		if n.bone == nil {
			errs = append(errs, fmt.Errorf("history node %s: %w", n.ModelName, ErrNodeUnbound))
			return
		}
		if err := n.bone.ApplyGeometry(pick(n)); err != nil {
			errs = append(errs, fmt.Errorf("history node %s: %w", n.ModelName, err))
		}
	})
	return errs
}

// History is a linear undo/redo history of whole-tree commands.
type History struct {
	undo  []*MoveCmd // top is the last element
	redo  []*MoveCmd
	hooks HistoryHooks
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// SetHooks registers observability callbacks.
func (h *History) SetHooks(hooks HistoryHooks) { h.hooks = hooks }

// UndoCount returns the depth of the undo stack.
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount returns the depth of the redo stack.
func (h *History) RedoCount() int { return len(h.redo) }

// Reset empties both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// Do pushes cmd onto the undo stack and invalidates the redo stack.
func (h *History) Do(cmd *MoveCmd, modelName string) {
	h.undo = append(h.undo, cmd)
	h.redo = nil
	h.emit(h.hooks.OnCommit, EventCommit, modelName, 0)
}

// Undo pops the top undo command, applies its previous geometry and moves it
// to the redo stack. It is a no-op on an empty stack. Per-node failures are
// joined into the returned error; the command is moved regardless.
func (h *History) Undo(modelName string) error {
	if len(h.undo) == 0 {
		return nil
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	errs := cmd.apply(func(n *MoveCmd) AvatarTransform { return n.Previous })
	h.redo = append(h.redo, cmd)
	h.emit(h.hooks.OnUndo, EventUndo, modelName, len(errs))
	return errors.Join(errs...)
}

// Redo pops the top redo command, applies its current geometry and moves it
// back to the undo stack. It is a no-op on an empty stack.
func (h *History) Redo(modelName string) error {
	if len(h.redo) == 0 {
		return nil
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	errs := cmd.apply(func(n *MoveCmd) AvatarTransform { return n.Current })
	h.undo = append(h.undo, cmd)
	h.emit(h.hooks.OnRedo, EventRedo, modelName, len(errs))
	return errors.Join(errs...)
}

// UndoEntries returns the undo commands top first (stack enumeration order).
func (h *History) UndoEntries() []*MoveCmd { return topFirst(h.undo) }

// RedoEntries returns the redo commands top first.
func (h *History) RedoEntries() []*MoveCmd { return topFirst(h.redo) }

// Restore pushes the given commands in order, the way a stack is rebuilt from
// its enumeration. Restoring a top-first listing therefore reverses it.
func (h *History) Restore(undo, redo []*MoveCmd) {
	h.undo = append([]*MoveCmd(nil), undo...)
	h.redo = append([]*MoveCmd(nil), redo...)
}

// ReverseUndo flips the undo stack.
func (h *History) ReverseUndo() { reverse(h.undo) }

// ReverseRedo flips the redo stack.
func (h *History) ReverseRedo() { reverse(h.redo) }

// Bind resolves every command node of both stacks to the skeleton's bones.
func (h *History) Bind(s *Skeleton) {
	for _, c := range h.undo {
		c.bind(s)
	}
	for _, c := range h.redo {
		c.bind(s)
	}
}

func (h *History) emit(fn func(*HistoryEvent), t EventType, modelName string, failed int) {
	if fn == nil {
		return
	}
	fn(&HistoryEvent{
		Timestamp: time.Now(),
		Type:      t,
		ModelName: modelName,
		UndoCount: len(h.undo),
		RedoCount: len(h.redo),
		Failed:    failed,
	})
}

func topFirst(stack []*MoveCmd) []*MoveCmd {
	out := make([]*MoveCmd, len(stack))
	for i, c := range stack {
		out[len(stack)-1-i] = c
	}
	return out
}

func reverse(s []*MoveCmd) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
