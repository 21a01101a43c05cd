package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/act/internal/testutils"
	"github.com/aretw0/act/pkg/domain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	common []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()

	rig := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(rig, []byte(testutils.MinimalRig), 0o644))

	cfg := filepath.Join(dir, "settings.yaml")
	settings := "log_level: error\nstore:\n  backend: file\n  location: " + filepath.ToSlash(filepath.Join(dir, "store")) + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(settings), 0o644))

	return &cli{t: t, common: []string{"--config=" + cfg, "--rig=" + rig, "--project=walk", "--yes=false"}}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(append([]string{}, c.common...), args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "act %s", strings.Join(args, " "))
	return out
}

func TestCLI_EditingSession(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("configure")
	assert.Contains(t, out, "Saved project projects/walk.json")
	assert.Contains(t, out, "Configured Minimal: 4 bones in the scene context")
	assert.Contains(t, out, "- Hips")

	out = c.mustRun("move", "LeftHand", "--position", "0.5,0.3,0")
	assert.Contains(t, out, "Moved LeftHand. 1 undo steps")

	out = c.mustRun("history")
	assert.Contains(t, out, "Undo (1):")
	assert.Contains(t, out, "Redo (0):")

	out = c.mustRun("inspect", "--format", "mermaid")
	assert.Contains(t, out, "class LeftHand changed;")

	out = c.mustRun("undo")
	assert.Contains(t, out, "Undone. 0 undo, 1 redo steps left")

	out = c.mustRun("inspect", "--format", "mermaid")
	assert.NotContains(t, out, "class LeftHand changed;")

	out = c.mustRun("redo")
	assert.Contains(t, out, "Redone. 1 undo, 0 redo steps left")

	out = c.mustRun("inspect", "--format", "markdown")
	assert.Contains(t, out, "| LeftHand | Spine | LeftHand | true | true |")
}

func TestCLI_Poses(t *testing.T) {
	c := newCLI(t)
	c.mustRun("configure")
	c.mustRun("move", "Hips", "--position", "0,2,0")

	assert.Contains(t, c.mustRun("pose", "save", "jump"), "Saved pose poses/jump.json")
	assert.Contains(t, c.mustRun("pose", "ls"), "- poses/jump.json")

	_, err := c.run("reset-pose")
	assert.ErrorIs(t, err, domain.ErrCanceled)

	assert.Contains(t, c.mustRun("reset-pose", "--yes"), "Pose reset. 2 undo steps")
	assert.Contains(t, c.mustRun("pose", "load", "jump"), "Applied pose poses/jump.json")
	assert.Contains(t, c.mustRun("set-default", "--yes"), "Default pose updated")
}

func TestCLI_Projects(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.mustRun("project", "ls"), "No projects found.")
	c.mustRun("configure")
	assert.Contains(t, c.mustRun("project", "ls"), "- projects/walk.json")
	assert.Contains(t, c.mustRun("project", "rm", "walk"), "Removed project projects/walk.json")

	_, err := c.run("history")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("inspect", "--format", "svg")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	c.mustRun("configure")
	_, err = c.run("inspect", "--format", "svg")
	assert.ErrorContains(t, err, `unknown format "svg"`)

	_, err = c.run("move", "Tail", "--position", "1,1,1")
	assert.ErrorContains(t, err, `rig has no node "Tail"`)
}

func TestCLI_ConfigAndVersion(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("config", "show")
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "log_level: error")

	assert.Contains(t, c.mustRun("version"), "act version ")
}

func TestNewPrompter(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	ok, err := newPrompter(strings.NewReader(""), &out, true, false).Confirm(ctx, "t", "m")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newPrompter(strings.NewReader("y\n"), &out, false, false).Confirm(ctx, "t", "m")
	require.NoError(t, err)
	assert.False(t, ok, "non-interactive input refuses")

	ok, err = newPrompter(strings.NewReader("Yes\n"), &out, false, true).Confirm(ctx, "Reset", "Sure?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Sure? [y/N]")

	ok, err = newPrompter(strings.NewReader("\n"), &out, false, true).Confirm(ctx, "t", "m")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3("1, 2.5,-3")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2.5, -3}, v)

	_, err = parseVec3("1,2")
	assert.Error(t, err)
	_, err = parseVec3("a,b,c")
	assert.Error(t, err)
}
