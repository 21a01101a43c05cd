package memory

import (
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/ports"
)

// Avatar implements ports.Avatar over an in-memory scene graph.
type Avatar struct {
	root     *Node
	humanoid bool
	skinned  []*Node
	roles    map[domain.HumanRole]*Node
}

var _ ports.Avatar = (*Avatar)(nil)

// NewAvatar wraps a scene root. The avatar is humanoid once a hip is mapped.
func NewAvatar(root *Node) *Avatar {
	return &Avatar{
		root:     root,
		humanoid: true,
		roles:    make(map[domain.HumanRole]*Node),
	}
}

// Root returns the scene root of the avatar.
func (a *Avatar) Root() *Node { return a.root }

// SetHumanoid overrides the humanoid flag.
func (a *Avatar) SetHumanoid(v bool) { a.humanoid = v }

// MapRole binds a canonical role to a node.
func (a *Avatar) MapRole(r domain.HumanRole, n *Node) {
	a.roles[r] = n
}

// AddSkinned records nodes referenced by a mesh-deformation binding.
func (a *Avatar) AddSkinned(nodes ...*Node) {
	a.skinned = append(a.skinned, nodes...)
}

// Clone deep-copies the scene graph and re-resolves every binding by name,
// producing a second live context for the same model.
func (a *Avatar) Clone() *Avatar {
	root := a.root.Clone()
	c := NewAvatar(root)
	c.humanoid = a.humanoid
	for _, n := range a.skinned {
		if m := root.Find(n.name); m != nil {
			c.skinned = append(c.skinned, m)
		}
	}
	for r, n := range a.roles {
		if m := root.Find(n.name); m != nil {
			c.roles[r] = m
		}
	}
	return c
}

func (a *Avatar) Name() string { return a.root.name }

func (a *Avatar) IsHumanoid() bool {
	return a.humanoid && a.roles[domain.RoleHips] != nil
}

func (a *Avatar) SkinnedBones() []domain.SceneNode {
	out := make([]domain.SceneNode, len(a.skinned))
	for i, n := range a.skinned {
		out[i] = n
	}
	return out
}

func (a *Avatar) HumanBone(r domain.HumanRole) domain.SceneNode {
	n, ok := a.roles[r]
	if !ok || n == nil {
		return nil
	}
	return n
}
