package domain

// PoseBone is the stored geometry of one bone in a pose document.
type PoseBone struct {
	ModelName string          `json:"model_name"`
	Role      HumanRole       `json:"role"`
	Geometry  AvatarTransform `json:"geometry"`
}

// Pose is a named set of bone geometries that can be applied to any skeleton
// of the same source model.
type Pose struct {
	ModelName string     `json:"model_name"`
	Bones     []PoseBone `json:"bones"`
}

// NewPose captures the dynamic geometry of every bone reachable from the hip,
// in depth-first order.
func NewPose(s *Skeleton) *Pose {
	p := &Pose{ModelName: s.ModelName}
	s.each(func(b *Bone) {
		p.Bones = append(p.Bones, PoseBone{
			ModelName: b.ModelName,
			Role:      b.Role,
			Geometry:  b.Dynamic,
		})
	})
	return p
}
