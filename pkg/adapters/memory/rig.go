package memory

import (
	"fmt"
	"os"

	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// RigNode is the YAML description of one scene node.
// Rotation is given as XYZ Euler angles in degrees.
type RigNode struct {
	Name     string    `yaml:"name"`
	Position []float64 `yaml:"position,omitempty"`
	Rotation []float64 `yaml:"rotation,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty"`
	Role     string    `yaml:"role,omitempty"`
	Skinned  bool      `yaml:"skinned,omitempty"`
	Children []RigNode `yaml:"children,omitempty"`
}

// Rig is the YAML description of a character scene graph.
type Rig struct {
	// Humanoid defaults to true.
	Humanoid *bool   `yaml:"humanoid,omitempty"`
	Root     RigNode `yaml:"root"`
}

// ParseRig decodes a YAML rig into a live avatar.
func ParseRig(data []byte) (*Avatar, error) {
	var rig Rig
	if err := yaml.Unmarshal(data, &rig); err != nil {
		return nil, fmt.Errorf("failed to parse rig: %w", err)
	}
	return rig.Build()
}

// LoadRigFile reads and decodes a YAML rig file.
func LoadRigFile(path string) (*Avatar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig %s: %w", path, err)
	}
	return ParseRig(data)
}

// Build instantiates the described scene graph.
func (r Rig) Build() (*Avatar, error) {
	if r.Root.Name == "" {
		return nil, fmt.Errorf("rig root has no name")
	}
	type frame struct {
		desc   *RigNode
		parent *Node
	}
	var av *Avatar
	stack := []frame{{&r.Root, nil}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := f.desc.node()
		if err != nil {
			return nil, err
		}
		if f.parent == nil {
			av = NewAvatar(n)
		} else {
			f.parent.AddChild(n)
		}
		if f.desc.Skinned {
			av.AddSkinned(n)
		}
		if f.desc.Role != "" {
			role, err := domain.ParseRole(f.desc.Role)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", f.desc.Name, err)
			}
			av.MapRole(role, n)
		}
		for i := len(f.desc.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.desc.Children[i], n})
		}
	}
	// Children were pushed in reverse; AddChild runs in pop order, which
	// restores document order.
	if r.Humanoid != nil {
		av.SetHumanoid(*r.Humanoid)
	}
	return av, nil
}

func (d *RigNode) node() (*Node, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("rig node without name")
	}
	n := NewNode(d.Name)
	if d.Position != nil {
		v, err := vec3(d.Position)
		if err != nil {
			return nil, fmt.Errorf("node %s position: %w", d.Name, err)
		}
		n.localPos = v
	}
	if d.Rotation != nil {
		e, err := vec3(d.Rotation)
		if err != nil {
			return nil, fmt.Errorf("node %s rotation: %w", d.Name, err)
		}
		n.localRot = mgl64.AnglesToQuat(mgl64.DegToRad(e[0]), mgl64.DegToRad(e[1]), mgl64.DegToRad(e[2]), mgl64.XYZ)
	}
	if d.Scale != nil {
		v, err := vec3(d.Scale)
		if err != nil {
			return nil, fmt.Errorf("node %s scale: %w", d.Name, err)
		}
		n.localScale = v
	}
	return n, nil
}

func vec3(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
