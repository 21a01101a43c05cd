package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/act/pkg/domain"
)

// Overlay marks bones with live state on the diagram.
type Overlay struct {
	Unbound []string
	Changed []string
}

// GenerateMermaid produces a Mermaid flowchart of the bone tree, walked
// depth-first from the hip. Shapes follow the bone kind:
// - Hip: ((Circle))
// - Hand bones: [[Subroutine]]
// - Human bones: ([Stadium]) labelled with their role
// - Default: [Rectangle]
func GenerateMermaid(s *domain.Skeleton, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	s.Walk(func(b *domain.Bone, _ int) bool {
		safeID := sanitizeMermaidID(b.ModelName)

		opener, closer := "[", "]"
		switch {
		case b.ModelName == s.Hip:
			opener, closer = "((", "))"
		case b.IsHandBone:
			opener, closer = "[[", "]]"
		case b.IsHumanBone:
			opener, closer = "([", "])"
		}

		label := b.ModelName
		if b.IsHumanBone && b.Role.String() != b.ModelName {
			label = fmt.Sprintf("%s <br/> %s", b.ModelName, b.Role)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, strings.ReplaceAll(label, "\"", "'"), closer)

		if p := s.Bone(b.Parent()); p != nil {
			arrow := "-->"
			if !b.IsSkeletal {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(p.ModelName), arrow, safeID)
		}
		return true
	})

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef unbound fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Unbound, "unbound")
		writeClass(&sb, overlay.Changed, "changed")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, names []string, class string) {
	seen := make(map[string]bool)
	for _, n := range names {
		safeID := sanitizeMermaidID(n)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(id)
}
