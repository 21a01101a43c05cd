package ports

import "github.com/aretw0/act/pkg/domain"

// Avatar is the host's view of a rigged character.
type Avatar interface {
	// Name returns the source model name.
	Name() string

	// IsHumanoid reports whether the character carries a valid humanoid mapping.
	IsHumanoid() bool

	// SkinnedBones returns every node referenced by a mesh-deformation binding,
	// possibly with duplicates.
	SkinnedBones() []domain.SceneNode

	// HumanBone resolves a canonical role, returning nil when unmapped.
	HumanBone(role domain.HumanRole) domain.SceneNode
}
