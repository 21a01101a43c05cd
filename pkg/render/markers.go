// Package render exposes a skeleton to a drawing layer as camera-independent
// joint markers.
package render

import (
	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
)

// Source selects which snapshot of each bone is drawn.
type Source uint8

const (
	// SourceCurrent draws the live skeleton.
	SourceCurrent Source = iota
	// SourceOriginal draws the rest pose.
	SourceOriginal
)

// Options configures marker generation.
type Options struct {
	Source   Source
	ShowHead bool

	JointSize             float64
	FingerJointSize       float64
	GlobalJointSize       float64
	GlobalFingerJointSize float64

	Color Color
}

// DefaultOptions matches the default preferences.
func DefaultOptions() Options {
	return Options{
		Source:                SourceCurrent,
		ShowHead:              true,
		JointSize:             0.024,
		FingerJointSize:       0.015,
		GlobalJointSize:       1,
		GlobalFingerJointSize: 1,
		Color:                 Color{R: 1, A: 0.42},
	}
}

// Marker is one joint sphere plus the segment to its parent.
type Marker struct {
	ModelName      string           `json:"model_name"`
	Role           domain.HumanRole `json:"role"`
	Position       mgl64.Vec3       `json:"position"`
	Rotation       mgl64.Quat       `json:"rotation"`
	ParentPosition mgl64.Vec3       `json:"parent_position"`
	HasParent      bool             `json:"has_parent"`
	IsHandBone     bool             `json:"is_hand_bone"`
	Size           float64          `json:"size"`
	Color          Color            `json:"color"`
}

// Markers walks the skeleton depth-first from the hip. With ShowHead off the
// head bone and its subtree are skipped.
func Markers(s *domain.Skeleton, opts Options) []Marker {
	if s == nil {
		return nil
	}
	pick := func(b *domain.Bone) domain.AvatarTransform {
		if opts.Source == SourceOriginal {
			return b.Original
		}
		return b.Current
	}

	var out []Marker
	s.Walk(func(b *domain.Bone, _ int) bool {
		if !opts.ShowHead && b.Role == domain.RoleHead {
			return false
		}
		g := pick(b)
		m := Marker{
			ModelName:  b.ModelName,
			Role:       b.Role,
			Position:   g.Position,
			Rotation:   g.Rotation,
			IsHandBone: b.IsHandBone,
			Size:       opts.JointSize * opts.GlobalJointSize,
			Color:      opts.Color,
		}
		if b.IsHandBone {
			m.Size = opts.FingerJointSize * opts.GlobalFingerJointSize
		}
		if p := s.Bone(b.Parent()); p != nil {
			m.HasParent = true
			m.ParentPosition = pick(p).Position
		}
		out = append(out, m)
		return true
	})
	return out
}
