package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/act/pkg/domain"
	"github.com/muesli/termenv"
)

// TreeOptions controls PrintTree.
type TreeOptions struct {
	// Color enables ANSI styling. Without it the tree is plain text.
	Color bool
	// Highlight names bones drawn in the accent colour (e.g. changed bones).
	Highlight []string
}

// PrintTree writes the bone hierarchy of s as an indented tree. Human bones
// carry their role, hand bones are tagged, and unbound bones are flagged.
func PrintTree(w io.Writer, s *domain.Skeleton, opts TreeOptions) {
	out := termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	if opts.Color {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI256))
	}
	p := out.ColorProfile()

	hot := make(map[string]bool, len(opts.Highlight))
	for _, n := range opts.Highlight {
		hot[n] = true
	}

	fmt.Fprintln(w, out.String(s.ModelName).Bold())
	s.Walk(func(b *domain.Bone, depth int) bool {
		name := out.String(b.ModelName)
		switch {
		case hot[b.ModelName]:
			name = name.Foreground(p.Color("#fbbf24")).Bold()
		case b.ModelName == s.Hip:
			name = name.Foreground(p.Color("#34d399")).Bold()
		case !b.IsSkeletal:
			name = name.Faint()
		}

		var tags []string
		if b.IsHumanBone && b.Role.String() != b.ModelName {
			tags = append(tags, b.Role.String())
		}
		if b.IsHandBone {
			tags = append(tags, "hand")
		}
		if !b.Bound() {
			tags = append(tags, out.String("unbound").Foreground(p.Color("#ef4444")).String())
		}

		line := strings.Repeat("  ", depth) + "- " + name.String()
		if len(tags) > 0 {
			line += " (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
		return true
	})
}

// BoneTable renders the bones of s as a markdown table.
func BoneTable(s *domain.Skeleton) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.ModelName)
	sb.WriteString("| Bone | Parent | Role | Skeletal | Hand |\n")
	sb.WriteString("|------|--------|------|----------|------|\n")
	s.Walk(func(b *domain.Bone, _ int) bool {
		role := "-"
		if b.IsHumanBone {
			role = b.Role.String()
		}
		parent := b.Parent()
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %t | %t |\n", b.ModelName, parent, role, b.IsSkeletal, b.IsHandBone)
		return true
	})
	return sb.String()
}
