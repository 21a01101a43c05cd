package memory

import (
	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is an in-process scene-graph node holding a local transform.
// World values are composed from the ancestors on every read.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	localPos   mgl64.Vec3
	localRot   mgl64.Quat
	localScale mgl64.Vec3
	destroyed  bool
}

var _ domain.SceneNode = (*Node)(nil)

// NewNode creates a detached node with an identity local transform.
func NewNode(name string) *Node {
	return &Node{
		name:       name,
		localRot:   mgl64.QuatIdent(),
		localScale: mgl64.Vec3{1, 1, 1},
	}
}

// AddChild appends child, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) *Node {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Destroy releases the node and its subtree.
func (n *Node) Destroy() {
	n.Walk(func(c *Node) { c.destroyed = true })
}

// Walk visits the subtree depth-first, parents first.
func (n *Node) Walk(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Find returns the first node of the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) {
		if found == nil && c.name == name {
			found = c
		}
	})
	return found
}

// Clone deep-copies the subtree. The copy is detached.
func (n *Node) Clone() *Node {
	c := &Node{
		name:       n.name,
		localPos:   n.localPos,
		localRot:   n.localRot,
		localScale: n.localScale,
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return c
}

func (n *Node) Name() string { return n.name }

func (n *Node) Parent() domain.SceneNode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []domain.SceneNode {
	out := make([]domain.SceneNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) Destroyed() bool { return n.destroyed }

func (n *Node) Position() mgl64.Vec3 {
	pos, _, _ := n.world()
	return pos
}

func (n *Node) Rotation() mgl64.Quat {
	_, rot, _ := n.world()
	return rot
}

func (n *Node) LocalPosition() mgl64.Vec3 { return n.localPos }
func (n *Node) LocalRotation() mgl64.Quat { return n.localRot }
func (n *Node) LocalScale() mgl64.Vec3    { return n.localScale }

func (n *Node) SetLocalPosition(v mgl64.Vec3) { n.localPos = v }
func (n *Node) SetLocalRotation(q mgl64.Quat) { n.localRot = q }
func (n *Node) SetLocalScale(v mgl64.Vec3)    { n.localScale = v }

// SetPosition moves the node to a world position.
func (n *Node) SetPosition(v mgl64.Vec3) {
	ppos, prot, pscale := n.parentWorld()
	local := prot.Inverse().Rotate(v.Sub(ppos))
	n.localPos = mgl64.Vec3{
		safeDiv(local[0], pscale[0]),
		safeDiv(local[1], pscale[1]),
		safeDiv(local[2], pscale[2]),
	}
}

// SetRotation orients the node to a world rotation.
func (n *Node) SetRotation(q mgl64.Quat) {
	_, prot, _ := n.parentWorld()
	n.localRot = prot.Inverse().Mul(q)
}

func (n *Node) parentWorld() (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	if n.parent == nil {
		return mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1}
	}
	return n.parent.world()
}

// world folds the local transforms from the scene root down to n.
// Scale is composed component-wise (lossy scale, no shear).
func (n *Node) world() (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	pos := mgl64.Vec3{}
	rot := mgl64.QuatIdent()
	scale := mgl64.Vec3{1, 1, 1}
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		pos = pos.Add(rot.Rotate(mulVec(scale, c.localPos)))
		rot = rot.Mul(c.localRot)
		scale = mulVec(scale, c.localScale)
	}
	return pos, rot, scale
}

func mulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
