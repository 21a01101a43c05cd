package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/act/internal/presentation/tui"
	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTree_Plain(t *testing.T) {
	skel, err := mapper.New().Build(testutils.Minimal(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	tui.PrintTree(&buf, skel, tui.TreeOptions{})

	want := strings.Join([]string{
		"Minimal",
		"- Hips",
		"  - Spine",
		"    - LeftHand (hand)",
		"      - LeftIndexProximal (hand)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrintTree_Unbound(t *testing.T) {
	skel, err := mapper.New().Build(testutils.Minimal(t))
	require.NoError(t, err)
	skel.Bone("Spine").Unbind()

	var buf bytes.Buffer
	tui.PrintTree(&buf, skel, tui.TreeOptions{})
	assert.Contains(t, buf.String(), "- Spine (unbound)")
}

func TestBoneTable(t *testing.T) {
	skel, err := mapper.New().Build(testutils.Minimal(t))
	require.NoError(t, err)

	table := tui.BoneTable(skel)
	assert.Contains(t, table, "| Hips | - | Hips | true | false |")
	assert.Contains(t, table, "| LeftHand | Spine | LeftHand | true | true |")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "avatar pose editor v1.2.3")
}
