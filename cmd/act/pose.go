package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/act/pkg/persistence"
	"github.com/aretw0/act/pkg/tracker"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

var poseCmd = &cobra.Command{
	Use:   "pose",
	Short: "Save, apply and list poses",
}

var poseSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Store the current pose of the active skeleton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			if err := a.editor.SavePose(ctx, args[0]); err != nil {
				return err
			}
			printf(cmd, "Saved pose %s\n", persistence.PoseKey(args[0]))
			return nil
		})
	},
}

var poseLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Apply a stored pose and save the project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			if err := a.editor.LoadPose(ctx, args[0]); err != nil {
				return err
			}
			if err := a.editor.SaveProject(ctx); err != nil {
				return err
			}
			printf(cmd, "Applied pose %s\n", persistence.PoseKey(args[0]))
			return nil
		})
	},
}

var poseLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored poses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDocuments(cmd, "poses", func(ctx context.Context, r *persistence.Repository) ([]string, error) {
			return r.ListPoses(ctx)
		})
	},
}

var resetPoseCmd = &cobra.Command{
	Use:   "reset-pose",
	Short: "Move every bone back to the default pose",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			if err := a.editor.ResetPose(ctx); err != nil {
				return err
			}
			settle(a, time.Now())
			if err := a.editor.SaveProject(ctx); err != nil {
				return err
			}
			undo, _ := a.editor.History()
			printf(cmd, "Pose reset. %d undo steps\n", len(undo))
			return nil
		})
	},
}

var setDefaultCmd = &cobra.Command{
	Use:   "set-default",
	Short: "Make the current pose the default pose",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			if err := a.editor.SetDefaultPose(ctx); err != nil {
				return err
			}
			if err := a.editor.SaveProject(ctx); err != nil {
				return err
			}
			printf(cmd, "Default pose updated\n")
			return nil
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <bone>",
	Short: "Set the local geometry of a bone and record it as one step",
	Long: `Moves a rig node and lets the change tracker settle, so the edit lands on the
undo stack exactly as an interactive drag would. Rotation is XYZ Euler degrees.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, _ := cmd.Flags().GetString("position")
		rot, _ := cmd.Flags().GetString("rotation")
		if pos == "" && rot == "" {
			return fmt.Errorf("nothing to move, pass --position or --rotation")
		}
		return withEditor(cmd, func(ctx context.Context, a *app) error {
			node := a.avatar.Root().Find(args[0])
			if node == nil {
				return fmt.Errorf("rig has no node %q", args[0])
			}
			if pos != "" {
				v, err := parseVec3(pos)
				if err != nil {
					return fmt.Errorf("position: %w", err)
				}
				node.SetLocalPosition(v)
			}
			if rot != "" {
				e, err := parseVec3(rot)
				if err != nil {
					return fmt.Errorf("rotation: %w", err)
				}
				node.SetLocalRotation(mgl64.AnglesToQuat(mgl64.DegToRad(e[0]), mgl64.DegToRad(e[1]), mgl64.DegToRad(e[2]), mgl64.XYZ))
			}

			if !settle(a, time.Now()) {
				printf(cmd, "No change recorded\n")
				return nil
			}
			if err := a.editor.SaveProject(ctx); err != nil {
				return err
			}
			undo, _ := a.editor.History()
			printf(cmd, "Moved %s. %d undo steps\n", args[0], len(undo))
			return nil
		})
	},
}

func init() {
	moveCmd.Flags().String("position", "", "Local position as x,y,z")
	moveCmd.Flags().String("rotation", "", "Local rotation as x,y,z degrees")

	rootCmd.AddCommand(poseCmd, resetPoseCmd, setDefaultCmd, moveCmd)
	poseCmd.AddCommand(poseSaveCmd, poseLoadCmd, poseLsCmd)
}

// settle drives the tracker through one sample and one quiet window,
// committing whatever changed.
func settle(a *app, start time.Time) bool {
	interval, window := a.settings.Tracker.Interval, a.settings.Tracker.Window
	if interval <= 0 {
		interval = tracker.DefaultInterval
	}
	if window <= 0 {
		window = tracker.DefaultWindow
	}
	step := interval + time.Millisecond
	seen := start.Add(step)
	a.editor.Tick(seen)
	return a.editor.Tick(seen.Add(window + step))
}

func parseVec3(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}
