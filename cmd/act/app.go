package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/act"
	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/internal/storage"
	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/aretw0/act/pkg/observability"
	"github.com/aretw0/act/pkg/persistence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what a command needs: settings, store and, once opened, an
// editor bound to the rig.
type app struct {
	cfgPath  string
	settings config.Settings
	logger   *slog.Logger
	backend  *storage.Backend
	repo     *persistence.Repository
	registry *prometheus.Registry
	events   *observability.Broadcaster

	editor *act.Editor
	avatar *memory.Avatar
	kind   domain.ContextKind
}

type appOptions struct {
	metrics bool
	events  bool
}

// newApp loads the settings and opens the configured store.
func newApp(cmd *cobra.Command, o appOptions) (*app, error) {
	cfgPath := settingsPath(cmd)
	settings, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	levelName := settings.LogLevel
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		levelName = v
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfgPath:  cfgPath,
		settings: settings,
		logger:   logging.NewWithWriter(cmd.ErrOrStderr(), level),
	}

	key, err := settings.EncryptionKey()
	if err != nil {
		return nil, err
	}
	sopts := []storage.Option{storage.WithLogger(a.logger)}
	if o.metrics {
		a.registry = prometheus.NewRegistry()
		sopts = append(sopts, storage.WithRegisterer(a.registry))
	}
	if o.events {
		a.events = observability.NewBroadcaster(16)
	}
	a.backend, err = storage.Open(settings.Store, key, sopts...)
	if err != nil {
		return nil, err
	}
	a.repo = a.backend.Repository(a.logger)
	return a, nil
}

// openEditor binds the rig and either loads the selected project or
// configures a fresh one.
func (a *app) openEditor(cmd *cobra.Command, loadProject bool) error {
	rigPath, _ := cmd.Flags().GetString("rig")
	if rigPath == "" {
		return errors.New("a rig is required, pass --rig")
	}
	av, err := memory.LoadRigFile(rigPath)
	if err != nil {
		return err
	}
	kindName, _ := cmd.Flags().GetString("context")
	kind, err := domain.ParseContextKind(kindName)
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	hooks := []domain.HistoryHooks{observability.LogHooks(a.logger)}
	if a.registry != nil {
		hooks = append(hooks, observability.NewMetrics(a.registry).Hooks())
	}
	if a.events != nil {
		hooks = append(hooks, a.events.Hooks())
	}

	a.avatar = av
	a.kind = kind
	a.editor = act.New(
		act.WithLogger(a.logger),
		act.WithRepository(a.repo),
		act.WithSettings(a.settings),
		act.WithHooks(observability.Combine(hooks...)),
		act.WithMapper(mapper.New(mapper.WithLogger(a.logger), mapper.SkipUnchangedStitch())),
		act.WithPrompter(newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), yes, isTerminal(os.Stdin))),
	)

	ctx := cmd.Context()
	name := a.projectName(cmd)
	if !loadProject || name == "" {
		return a.editor.Configure(ctx, kind, av)
	}
	if err := a.restoreScene(ctx, name, kind); err != nil {
		return err
	}
	if err := a.editor.LoadProject(ctx, name, av); err != nil {
		return err
	}
	if kind != domain.ContextScene {
		return a.editor.SwitchContext(kind, av)
	}
	return nil
}

// restoreScene puts the rig back into the pose it had when the project was
// last touched. A project without a stored scene keeps the rig at rest.
func (a *app) restoreScene(ctx context.Context, project string, kind domain.ContextKind) error {
	pose, err := a.repo.LoadScene(ctx, project, kind)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, pb := range pose.Bones {
		node := a.avatar.Root().Find(pb.ModelName)
		if node == nil {
			a.logger.Warn("Scene bone missing from rig", "bone", pb.ModelName)
			continue
		}
		node.SetLocalPosition(pb.Geometry.LocalPosition)
		node.SetLocalRotation(pb.Geometry.LocalRotation)
		node.SetLocalScale(pb.Geometry.Scale)
	}
	return nil
}

// saveScene stores the live rig pose next to the open project.
func (a *app) saveScene(ctx context.Context) error {
	p := a.editor.Project()
	kind, skel := a.editor.Active()
	if p == nil || p.ProjectPath == "" || skel == nil {
		return nil
	}
	skel.RefreshDynamic()
	return a.repo.SaveScene(ctx, p.ProjectPath, kind, domain.NewPose(skel))
}

// projectName is the --project flag, falling back to the last project used.
func (a *app) projectName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("project"); name != "" {
		return name
	}
	return a.settings.LastProjectPath
}

// close remembers the last project and releases the store.
func (a *app) close() {
	if a.editor != nil {
		if last := a.editor.Settings().LastProjectPath; last != "" && last != a.settings.LastProjectPath {
			a.settings.LastProjectPath = last
			if err := a.settings.Save(a.cfgPath); err != nil {
				a.logger.Warn("Failed to remember last project", "err", err)
			}
		}
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("Failed to close store", "err", err)
	}
}

// withEditor runs fn against an editor holding the selected project.
func withEditor(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.openEditor(cmd, true); err != nil {
		return err
	}
	if err := fn(cmd.Context(), a); err != nil {
		return err
	}
	return a.saveScene(cmd.Context())
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled reports whether w is a terminal that should receive ANSI styling.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
