package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/act/internal/presentation/graph"
	"github.com/aretw0/act/internal/presentation/tui"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/persistence"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Map the rig onto a humanoid skeleton and start a project",
	Long: `Builds the skeleton for the selected context from the rig. With --project
the new project is saved under that name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.openEditor(cmd, false); err != nil {
			return err
		}

		kind, skel := a.editor.Active()
		if name, _ := cmd.Flags().GetString("project"); name != "" {
			if err := a.editor.SaveProjectAs(cmd.Context(), name); err != nil {
				return err
			}
			if err := a.saveScene(cmd.Context()); err != nil {
				return err
			}
			printf(cmd, "Saved project %s\n", persistence.ProjectKey(name))
		}
		printf(cmd, "Configured %s: %d bones in the %s context\n", skel.ModelName, skel.Len(), kind)
		tui.PrintTree(cmd.OutOrStdout(), skel, tui.TreeOptions{Color: colorEnabled(cmd.OutOrStdout())})
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage stored projects",
}

var projectLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDocuments(cmd, "projects", func(ctx context.Context, r *persistence.Repository) ([]string, error) {
			return r.ListProjects(ctx)
		})
	},
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove one or more projects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		var failed []string
		for _, name := range args {
			key := persistence.ProjectKey(name)
			if err := a.repo.Delete(cmd.Context(), key); err != nil {
				a.logger.Error("Failed to remove project", "key", key, "err", err)
				failed = append(failed, name)
				continue
			}
			for _, kind := range []domain.ContextKind{domain.ContextScene, domain.ContextAvatar} {
				err := a.repo.Delete(cmd.Context(), persistence.SceneKey(key, kind))
				if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
					a.logger.Warn("Failed to remove project scene", "key", key, "err", err)
				}
			}
			printf(cmd, "Removed project %s\n", key)
		}
		if len(failed) > 0 {
			return fmt.Errorf("could not remove: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the bone hierarchy of the active skeleton",
	Long: `Prints the skeleton as an indented tree, a Mermaid flowchart (graph TD)
or a markdown table. Bones posed away from their rest geometry are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			_, skel := a.editor.Active()
			if skel == nil {
				return domain.ErrNoSkeleton
			}
			out := cmd.OutOrStdout()
			switch format {
			case "tree":
				tui.PrintTree(out, skel, tui.TreeOptions{
					Color:     colorEnabled(out),
					Highlight: posedBones(skel),
				})
			case "mermaid":
				fmt.Fprint(out, graph.GenerateMermaid(skel, &graph.Overlay{
					Unbound: skel.Unbound(),
					Changed: posedBones(skel),
				}))
			case "markdown":
				table := tui.BoneTable(skel)
				if colorEnabled(out) {
					render, err := tui.NewRenderer(0)
					if err != nil {
						return err
					}
					if table, err = render(table); err != nil {
						return err
					}
				}
				fmt.Fprint(out, table)
			default:
				return fmt.Errorf("unknown format %q, use tree, mermaid or markdown", format)
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the undo and redo steps of the active skeleton",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			kind, _ := a.editor.Active()
			undo, redo := a.editor.History()
			printf(cmd, "Context: %s\n", kind)
			printHistory(cmd, "Undo", undo)
			printHistory(cmd, "Redo", redo)
			return nil
		})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last history step and save the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			return replayAndSave(ctx, cmd, a, "Undone", a.editor.Undo)
		})
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Reapply the last undone step and save the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			return replayAndSave(ctx, cmd, a, "Redone", a.editor.Redo)
		})
	},
}

func init() {
	inspectCmd.Flags().StringP("format", "f", "tree", "Output format: tree, mermaid or markdown")

	rootCmd.AddCommand(configureCmd, projectCmd, inspectCmd, historyCmd, undoCmd, redoCmd)
	projectCmd.AddCommand(projectLsCmd, projectRmCmd)
}

func replayAndSave(ctx context.Context, cmd *cobra.Command, a *app, verb string, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	if err := a.editor.SaveProject(ctx); err != nil {
		return err
	}
	undo, redo := a.editor.History()
	printf(cmd, "%s. %d undo, %d redo steps left\n", verb, len(undo), len(redo))
	return nil
}

func printHistory(cmd *cobra.Command, label string, cmds []*domain.MoveCmd) {
	printf(cmd, "%s (%d):\n", label, len(cmds))
	for i, c := range cmds {
		printf(cmd, "  %d. %s, %d bones\n", i+1, c.ModelName, c.Size())
	}
}

func listDocuments(cmd *cobra.Command, what string, list func(context.Context, *persistence.Repository) ([]string, error)) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	keys, err := list(cmd.Context(), a.repo)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		printf(cmd, "No %s found.\n", what)
		return nil
	}
	for _, k := range keys {
		printf(cmd, "- %s\n", k)
	}
	return nil
}

// posedBones lists bound bones whose node differs from the rest geometry.
func posedBones(s *domain.Skeleton) []string {
	var out []string
	s.Walk(func(b *domain.Bone, _ int) bool {
		if b.Bound() && !b.Original.EqualNode(b.Node()) {
			out = append(out, b.ModelName)
		}
		return true
	})
	return out
}
