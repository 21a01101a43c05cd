package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ContextKind selects one of the two skeletons held by a project.
type ContextKind uint8

const (
	// ContextScene is the skeleton bound to the object placed in the scene.
	ContextScene ContextKind = iota
	// ContextAvatar is the skeleton bound to the avatar asset itself.
	ContextAvatar
)

func (k ContextKind) String() string {
	switch k {
	case ContextScene:
		return "scene"
	case ContextAvatar:
		return "avatar"
	default:
		return fmt.Sprintf("ContextKind(%d)", k)
	}
}

// ParseContextKind resolves "scene" or "avatar".
func ParseContextKind(s string) (ContextKind, error) {
	switch s {
	case "scene", "a", "A":
		return ContextScene, nil
	case "avatar", "b", "B":
		return ContextAvatar, nil
	}
	return 0, fmt.Errorf("unknown context %q", s)
}

// Other returns the opposite context.
func (k ContextKind) Other() ContextKind {
	if k == ContextScene {
		return ContextAvatar
	}
	return ContextScene
}

// Project is the persisted unit of work: two skeletons of the same source
// model, each with its own history.
type Project struct {
	ID               string `json:"id"`
	SourceModelName  string `json:"source_model_name"`
	SourceModelPath  string `json:"source_model_path,omitempty"`
	SceneObjectName  string `json:"scene_object_name,omitempty"`
	AvatarObjectName string `json:"avatar_object_name,omitempty"`
	PoseDir          string `json:"pose_dir,omitempty"`
	ProjectPath      string `json:"project_path,omitempty"`

	SceneSkeleton  *Skeleton `json:"-"`
	AvatarSkeleton *Skeleton `json:"-"`
}

// NewProject creates an empty project with a fresh identifier.
func NewProject(sourceModelName string) *Project {
	return &Project{
		ID:              uuid.NewString(),
		SourceModelName: sourceModelName,
	}
}

// Skeleton returns the skeleton of the given context, possibly nil.
func (p *Project) Skeleton(k ContextKind) *Skeleton {
	if k == ContextAvatar {
		return p.AvatarSkeleton
	}
	return p.SceneSkeleton
}

// SetSkeleton replaces the skeleton of the given context.
func (p *Project) SetSkeleton(k ContextKind, s *Skeleton) {
	if k == ContextAvatar {
		p.AvatarSkeleton = s
		return
	}
	p.SceneSkeleton = s
}

// ObjectName returns the scene object name recorded for the context.
func (p *Project) ObjectName(k ContextKind) string {
	if k == ContextAvatar {
		return p.AvatarObjectName
	}
	return p.SceneObjectName
}

// SetObjectName records the scene object name for the context.
func (p *Project) SetObjectName(k ContextKind, name string) {
	if k == ContextAvatar {
		p.AvatarObjectName = name
		return
	}
	p.SceneObjectName = name
}
