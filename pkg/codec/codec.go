// Package codec encodes projects and poses as JSON documents.
//
// Bones are written as an ordered array so the depth-first key order
// survives a round trip. History stacks are written top first, the order a
// stack enumerates in; decoding pushes them back in document order, which
// leaves both stacks reversed until the mapper restores them.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/act/pkg/domain"
)

// FormatVersion is the document version written by this package.
const FormatVersion = 1

type skeletonDocument struct {
	ModelName string                      `json:"model_name"`
	Hip       string                      `json:"hip"`
	Bones     []*domain.Bone              `json:"bones"`
	Roles     map[domain.HumanRole]string `json:"roles"`
	Undo      []*domain.MoveCmd           `json:"undo"`
	Redo      []*domain.MoveCmd           `json:"redo"`
}

type projectDocument struct {
	Version int `json:"version"`
	*domain.Project
	Scene  *skeletonDocument `json:"scene_skeleton,omitempty"`
	Avatar *skeletonDocument `json:"avatar_skeleton,omitempty"`
}

type poseDocument struct {
	Version int `json:"version"`
	*domain.Pose
}

// EncodeProject writes a project and both skeletons with their histories.
func EncodeProject(p *domain.Project) ([]byte, error) {
	doc := projectDocument{
		Version: FormatVersion,
		Project: p,
		Scene:   encodeSkeleton(p.SceneSkeleton),
		Avatar:  encodeSkeleton(p.AvatarSkeleton),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return data, nil
}

// DecodeProject reads a project document. Skeletons come back unbound with
// their history stacks in stored order.
func DecodeProject(data []byte) (*domain.Project, error) {
	doc := projectDocument{Project: &domain.Project{}}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	if doc.SourceModelName == "" {
		return nil, fmt.Errorf("%w: project has no source model", domain.ErrInvalidDocument)
	}
	p := doc.Project
	var err error
	if p.SceneSkeleton, err = decodeSkeleton(doc.Scene); err != nil {
		return nil, fmt.Errorf("scene skeleton: %w", err)
	}
	if p.AvatarSkeleton, err = decodeSkeleton(doc.Avatar); err != nil {
		return nil, fmt.Errorf("avatar skeleton: %w", err)
	}
	return p, nil
}

// EncodePose writes a pose.
func EncodePose(p *domain.Pose) ([]byte, error) {
	data, err := json.MarshalIndent(poseDocument{Version: FormatVersion, Pose: p}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode pose: %w", err)
	}
	return data, nil
}

// DecodePose reads a pose document.
func DecodePose(data []byte) (*domain.Pose, error) {
	doc := poseDocument{Pose: &domain.Pose{}}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	if doc.ModelName == "" {
		return nil, fmt.Errorf("%w: pose has no model name", domain.ErrInvalidDocument)
	}
	return doc.Pose, nil
}

func checkVersion(v int) error {
	if v < 1 || v > FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidDocument, v)
	}
	return nil
}

func encodeSkeleton(s *domain.Skeleton) *skeletonDocument {
	if s == nil {
		return nil
	}
	return &skeletonDocument{
		ModelName: s.ModelName,
		Hip:       s.Hip,
		Bones:     s.Bones(),
		Roles:     s.Roles(),
		Undo:      s.History.UndoEntries(),
		Redo:      s.History.RedoEntries(),
	}
}

func decodeSkeleton(doc *skeletonDocument) (*domain.Skeleton, error) {
	if doc == nil {
		return nil, nil
	}
	s := domain.NewSkeleton(doc.ModelName)
	for _, b := range doc.Bones {
		if b == nil || b.ModelName == "" {
			return nil, fmt.Errorf("%w: unnamed bone", domain.ErrInvalidDocument)
		}
		b.Dynamic = b.Original
		b.Current = b.Original
		b.Previous = b.Original
		if !s.AddBone(b) {
			return nil, fmt.Errorf("%w: duplicate bone %q", domain.ErrInvalidDocument, b.ModelName)
		}
	}
	for r, name := range doc.Roles {
		if err := s.AssignRole(r, name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
		}
	}
	if doc.Hip != "" && s.Bone(doc.Hip) == nil {
		return nil, fmt.Errorf("%w: hip %q is not a bone", domain.ErrInvalidDocument, doc.Hip)
	}
	s.Hip = doc.Hip
	for _, cmds := range [][]*domain.MoveCmd{doc.Undo, doc.Redo} {
		for _, c := range cmds {
			if c == nil {
				return nil, fmt.Errorf("%w: empty history entry", domain.ErrInvalidDocument)
			}
		}
	}
	s.History.Restore(doc.Undo, doc.Redo)
	return s, nil
}
