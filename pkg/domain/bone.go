package domain

// Bone is a node of the skeleton tree.
//
// Original is the persisted rest pose. Dynamic mirrors the live node every
// sample; Current and Previous only advance on Step and form the before/after
// pair recorded by the history.
type Bone struct {
	ModelName   string    `json:"model_name"`
	Role        HumanRole `json:"role"`
	ParentName  string    `json:"parent_name,omitempty"`
	IsHumanBone bool      `json:"is_human_bone"`
	IsSkeletal  bool      `json:"is_skeletal"`
	IsHandBone  bool      `json:"is_hand_bone"`
	IsRoot      bool      `json:"is_root"`

	Original AvatarTransform `json:"original"`

	Dynamic  AvatarTransform `json:"-"`
	Current  AvatarTransform `json:"-"`
	Previous AvatarTransform `json:"-"`

	changed  bool
	node     SceneNode
	parent   string
	children []string
}

// NewBone creates an unbound bone with identity geometry.
func NewBone(modelName string) *Bone {
	id := IdentityTransform()
	return &Bone{
		ModelName: modelName,
		Original:  id,
		Dynamic:   id,
		Current:   id,
		Previous:  id,
	}
}

// Bind attaches the bone to a live node.
func (b *Bone) Bind(node SceneNode) { b.node = node }

// Unbind drops the live node, keeping the name.
func (b *Bone) Unbind() { b.node = nil }

// Node returns the bound node, or nil.
func (b *Bone) Node() SceneNode { return b.node }

// Bound reports whether the bone has a live node.
func (b *Bone) Bound() bool { return b.node != nil && !b.node.Destroyed() }

// Parent returns the linked parent key, empty for the root or an orphan.
func (b *Bone) Parent() string { return b.parent }

// Children returns the linked child keys in discovery order.
func (b *Bone) Children() []string {
	out := make([]string, len(b.children))
	copy(out, b.children)
	return out
}

// Changed reports the per-bone flag set by HasChanged and the geometry writers.
func (b *Bone) Changed() bool { return b.changed }

// RefreshDynamic copies the live node into the dynamic snapshot.
func (b *Bone) RefreshDynamic() {
	if b.Bound() {
		b.Dynamic.SetFromNode(b.node)
	}
}

// HasChanged reports whether the live node moved since the last sample.
// tol follows AvatarTransform.ApproxEqual; zero means exact comparison.
func (b *Bone) HasChanged(tol float64) bool {
	b.changed = false
	if b.Bound() && !b.Dynamic.ApproxEqual(TransformOf(b.node), tol) {
		b.changed = true
	}
	return b.changed
}

// ResetChangeFlag clears the per-bone flag.
func (b *Bone) ResetChangeFlag() { b.changed = false }

// Step advances previous to current and current to dynamic.
func (b *Bone) Step() {
	b.Previous.Set(b.Current)
	b.Current.Set(b.Dynamic)
}

// InitGeometry sets every snapshot, the rest pose included, to dynamic.
func (b *Bone) InitGeometry() {
	b.Current.Set(b.Dynamic)
	b.Previous.Set(b.Dynamic)
	b.Original.Set(b.Dynamic)
}

// Reinit re-reads the live node and resets current/previous to it.
// The rest pose is kept.
func (b *Bone) Reinit() {
	b.RefreshDynamic()
	b.Current.Set(b.Dynamic)
	b.Previous.Set(b.Dynamic)
}

// ApplyGeometry writes g onto the live node and into dynamic/current.
// It returns ErrNodeUnbound, leaving state untouched, when there is no node.
func (b *Bone) ApplyGeometry(g AvatarTransform) error {
	if !b.Bound() {
		return ErrNodeUnbound
	}
	g.writeTo(b.node)
	b.Dynamic.Set(g)
	b.Current.Set(g)
	b.changed = true
	return nil
}

// MoveGeometry writes g onto the live node and marks the bone changed.
// The Dynamic and Current snapshots are left alone.
func (b *Bone) MoveGeometry(g AvatarTransform) error {
	if !b.Bound() {
		return ErrNodeUnbound
	}
	g.writeTo(b.node)
	b.changed = true
	return nil
}

// SetOriginalToCurrent replaces the rest pose with the current snapshot.
func (b *Bone) SetOriginalToCurrent() { b.Original.Set(b.Current) }

func (b *Bone) addChild(name string) { b.children = append(b.children, name) }

func (b *Bone) clearLinks() {
	b.parent = ""
	b.children = nil
}
