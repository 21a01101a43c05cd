package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/act/internal/presentation/graph"
	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	skel, err := mapper.New().Build(testutils.Humanoid(t))
	require.NoError(t, err)

	out := graph.GenerateMermaid(skel, nil)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))

	tests := []struct {
		name     string
		contains string
	}{
		{"Hip Shape", `Hips(("Hips"))`},
		{"Hand Bone Shape", `LeftIndexProximal[["LeftIndexProximal"]]`},
		{"Human Bone Shape", `Spine(["Spine"])`},
		{"Plain Bone Shape", `SpineTwist["SpineTwist"]`},
		{"Skeletal Edge", "Hips --> Spine"},
		{"Non Skeletal Edge", "Head -.-> Hair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	skel, err := mapper.New().Build(testutils.Minimal(t))
	require.NoError(t, err)

	out := graph.GenerateMermaid(skel, &graph.Overlay{
		Unbound: []string{"Spine", "Spine"},
		Changed: []string{"LeftHand"},
	})
	assert.Contains(t, out, "classDef unbound")
	assert.Equal(t, 1, strings.Count(out, "class Spine unbound;"))
	assert.Contains(t, out, "class LeftHand changed;")
}
