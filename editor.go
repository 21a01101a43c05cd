package act

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/mapper"
	"github.com/aretw0/act/pkg/persistence"
	"github.com/aretw0/act/pkg/ports"
	"github.com/aretw0/act/pkg/render"
	"github.com/aretw0/act/pkg/tracker"
)

// Editor is one editing session: a project with a scene and an avatar
// skeleton, one of which is active and bound to a live avatar.
// All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	project *domain.Project
	active  domain.ContextKind
	avatar  ports.Avatar
	tracker *tracker.Tracker

	mapper   *mapper.Mapper
	repo     *persistence.Repository
	prompter ports.Prompter
	settings config.Settings
	hooks    domain.HistoryHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithRepository sets where projects and poses are stored.
func WithRepository(repo *persistence.Repository) Option {
	return func(e *Editor) {
		e.repo = repo
	}
}

// WithPrompter sets who confirms destructive or mismatched operations.
// Without one, confirmations are refused.
func WithPrompter(p ports.Prompter) Option {
	return func(e *Editor) {
		e.prompter = p
	}
}

// WithSettings sets the preferences.
func WithSettings(s config.Settings) Option {
	return func(e *Editor) {
		e.settings = s
	}
}

// WithHooks registers history observability hooks on every skeleton.
func WithHooks(hooks domain.HistoryHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithMapper replaces the default skeleton mapper.
func WithMapper(m *mapper.Mapper) Option {
	return func(e *Editor) {
		e.mapper = m
	}
}

// WithClock sets the time source used by operations that reset the tracker.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// New creates an editor with no project open.
func New(opts ...Option) *Editor {
	e := &Editor{
		settings: config.Defaults(),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.mapper == nil {
		e.mapper = mapper.New(mapper.WithLogger(e.logger))
	}
	if e.repo == nil {
		e.repo = persistence.NewRepository(memory.NewStore(), persistence.WithLogger(e.logger))
	}
	return e
}

// NewProject closes the current project without saving it.
func (e *Editor) NewProject() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.project = nil
	e.avatar = nil
	e.tracker = nil
	e.active = domain.ContextScene
}

// Project returns the open project, or nil.
func (e *Editor) Project() *domain.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project
}

// Settings returns the preferences in use.
func (e *Editor) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Active returns the active context and its skeleton. The skeleton is nil
// when nothing is configured.
func (e *Editor) Active() (domain.ContextKind, *domain.Skeleton) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.activeSkeleton()
}

func (e *Editor) activeSkeleton() *domain.Skeleton {
	if e.project == nil {
		return nil
	}
	return e.project.Skeleton(e.active)
}

// Configure starts a project for av, or reuses the open one, and makes kind
// the active context. The skeleton of that context is built on first use and
// rebound afterwards. The open project is kept when activation fails, and the
// skeleton that stops being active is unbound.
func (e *Editor) Configure(ctx context.Context, kind domain.ContextKind, av ports.Avatar) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.project != nil && e.project.SourceModelName != av.Name() {
		msg := fmt.Sprintf("The open project is for %q, start a new project for %q?", e.project.SourceModelName, av.Name())
		if err := e.confirm(ctx, "Different model", msg, domain.ErrModelMismatch); err != nil {
			return err
		}
	}
	if e.project == nil || e.project.SourceModelName != av.Name() {
		p := domain.NewProject(av.Name())
		if err := e.activate(p, kind, av); err != nil {
			return err
		}
		e.project = p
		return nil
	}
	return e.activate(e.project, kind, av)
}

// SwitchContext makes the other skeleton of the open project active,
// binding it to av.
func (e *Editor) SwitchContext(kind domain.ContextKind, av ports.Avatar) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return domain.ErrNoProject
	}
	return e.activate(e.project, kind, av)
}

func (e *Editor) activate(p *domain.Project, kind domain.ContextKind, av ports.Avatar) error {
	skel := p.Skeleton(kind)
	if skel == nil || skel.HipBone() == nil {
		built, err := e.mapper.Build(av)
		if err != nil {
			return err
		}
		skel = built
	} else {
		e.mapper.Rebind(skel, av)
	}
	e.prepare(skel)
	p.SetSkeleton(kind, skel)
	p.SetObjectName(kind, av.Name())

	if prev := e.activeSkeleton(); prev != nil && prev != skel {
		prev.UnbindAll()
	}
	e.active = kind
	e.avatar = av
	e.retrack(skel)
	e.logger.Info("Context activated",
		"context", kind.String(),
		"model", skel.ModelName,
		"bones", skel.Len(),
	)
	return nil
}

func (e *Editor) prepare(skel *domain.Skeleton) {
	if skel == nil {
		return
	}
	skel.Tolerance = e.settings.Tracker.Tolerance
	skel.History.SetHooks(e.hooks)
}

func (e *Editor) retrack(skel *domain.Skeleton) {
	if e.tracker == nil {
		e.tracker = tracker.New(skel,
			tracker.WithInterval(e.settings.Tracker.Interval),
			tracker.WithWindow(e.settings.Tracker.Window),
			tracker.WithLogger(e.logger),
		)
	}
	e.tracker.SetSkeleton(skel, e.now())
}

// LoadProject reads a stored project and binds its skeleton for the active
// context to av. A project made for another model is loaded only when the
// prompter confirms. Nothing changes when loading fails.
func (e *Editor) LoadProject(ctx context.Context, name string, av ports.Avatar) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.repo.LoadProject(ctx, name)
	if err != nil {
		return err
	}
	if p.SourceModelName != av.Name() {
		msg := fmt.Sprintf("The project selected is for %q, not %q. Load it anyway?", p.SourceModelName, av.Name())
		if err := e.confirm(ctx, "Invalid project selected", msg, domain.ErrModelMismatch); err != nil {
			return err
		}
	}

	kind := e.active
	if skel := p.Skeleton(kind); skel != nil && skel.Len() > 0 {
		if err := e.mapper.LoadFromPersisted(skel, av); err != nil {
			return fmt.Errorf("%s skeleton: %w", kind, err)
		}
	} else {
		p.SetSkeleton(kind, nil)
	}
	if skel := p.Skeleton(kind.Other()); skel != nil && skel.Len() > 0 {
		if err := e.mapper.LoadInactive(skel); err != nil {
			return fmt.Errorf("%s skeleton: %w", kind.Other(), err)
		}
	} else {
		p.SetSkeleton(kind.Other(), nil)
	}

	p.ProjectPath = persistence.ProjectKey(name)
	p.SetObjectName(kind, av.Name())
	e.prepare(p.SceneSkeleton)
	e.prepare(p.AvatarSkeleton)
	if prev := e.activeSkeleton(); prev != nil && prev != p.Skeleton(kind) {
		prev.UnbindAll()
	}
	e.project = p
	e.avatar = av
	e.settings.LastProjectPath = p.ProjectPath

	if skel := p.Skeleton(kind); skel != nil {
		e.retrack(skel)
	} else {
		e.tracker = nil
	}
	e.logger.Info("Project loaded",
		"key", p.ProjectPath,
		"model", p.SourceModelName,
		"context", kind.String(),
	)
	return nil
}

// SaveProject stores the project under the name it was loaded or last saved as.
func (e *Editor) SaveProject(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.canSave(); err != nil {
		return err
	}
	if e.project.ProjectPath == "" {
		return domain.ErrNoProjectPath
	}
	return e.repo.SaveProject(ctx, e.project.ProjectPath, e.project)
}

// SaveProjectAs stores the project under name and remembers it.
func (e *Editor) SaveProjectAs(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.canSave(); err != nil {
		return err
	}
	key := persistence.ProjectKey(name)
	prev := e.project.ProjectPath
	e.project.ProjectPath = key
	if err := e.repo.SaveProject(ctx, key, e.project); err != nil {
		e.project.ProjectPath = prev
		return err
	}
	e.settings.LastProjectPath = key
	return nil
}

func (e *Editor) canSave() error {
	if e.project == nil {
		return domain.ErrNoProject
	}
	if e.project.SceneSkeleton == nil && e.project.AvatarSkeleton == nil {
		return domain.ErrNoSkeleton
	}
	return nil
}

// SavePose stores the last sampled pose of the active skeleton.
func (e *Editor) SavePose(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return domain.ErrNoSkeleton
	}
	key := persistence.PoseKey(name)
	if err := e.repo.SavePose(ctx, key, domain.NewPose(skel)); err != nil {
		return err
	}
	e.project.PoseDir = path.Dir(key)
	return nil
}

// LoadPose applies a stored pose to the active skeleton. The pose is not an
// undo step. Bones that cannot be written are logged and skipped.
func (e *Editor) LoadPose(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return domain.ErrNoSkeleton
	}
	pose, err := e.repo.LoadPose(ctx, name)
	if err != nil {
		return err
	}
	if pose.ModelName != skel.ModelName {
		msg := fmt.Sprintf("The pose was saved for %q, apply it to %q?", pose.ModelName, skel.ModelName)
		if err := e.confirm(ctx, "Different model", msg, domain.ErrModelMismatch); err != nil {
			return err
		}
	}
	e.warnEach("Pose bone not applied", skel.ApplyPose(pose))
	e.project.PoseDir = path.Dir(persistence.PoseKey(name))
	return nil
}

// ResetPose moves the active skeleton back to its default pose after
// confirmation. The move is recorded like any other change.
func (e *Editor) ResetPose(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return domain.ErrNoSkeleton
	}
	if err := e.confirm(ctx, "Reset Pose to Default",
		"Are you sure you want to Reset the current pose to the default?", domain.ErrCanceled); err != nil {
		return err
	}
	e.warnEach("Bone not reset", skel.ResetToOriginal())
	return nil
}

// SetDefaultPose makes the current pose the default after confirmation.
// The previous default is lost.
func (e *Editor) SetDefaultPose(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return domain.ErrNoSkeleton
	}
	if err := e.confirm(ctx, "Set Default Pose",
		"Are you sure you want to Set the Default pose to current? You will lose the default pose permanently!", domain.ErrCanceled); err != nil {
		return err
	}
	skel.SetOriginalToCurrent()
	return nil
}

// Undo reverts the last step of the active skeleton.
func (e *Editor) Undo() error {
	return e.replay(func(s *domain.Skeleton) error { return s.Undo() }, "undo")
}

// Redo re-applies the last undone step of the active skeleton.
func (e *Editor) Redo() error {
	return e.replay(func(s *domain.Skeleton) error { return s.Redo() }, "redo")
}

func (e *Editor) replay(fn func(*domain.Skeleton) error, op string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return domain.ErrNoSkeleton
	}
	e.warnEach("Bone not restored by "+op, fn(skel))
	if e.tracker != nil {
		e.tracker.Reset(e.now())
	}
	return nil
}

// Tick is the per-frame sampling hook. It reports whether a history step
// was committed.
func (e *Editor) Tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tracker == nil {
		return false
	}
	return e.tracker.Tick(now)
}

// Markers renders the skeleton of kind with the given style.
func (e *Editor) Markers(kind domain.ContextKind, style config.Style) []render.Marker {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return nil
	}
	return render.Markers(e.project.Skeleton(kind), e.settings.MarkerOptions(style))
}

// History lists the undo and redo steps of the active skeleton, top first.
func (e *Editor) History() (undo, redo []*domain.MoveCmd) {
	e.mu.Lock()
	defer e.mu.Unlock()
	skel := e.activeSkeleton()
	if skel == nil {
		return nil, nil
	}
	return skel.History.UndoEntries(), skel.History.RedoEntries()
}

// confirm asks the prompter. A refusal, or no prompter at all, yields refused.
func (e *Editor) confirm(ctx context.Context, title, message string, refused error) error {
	if e.prompter == nil {
		return refused
	}
	ok, err := e.prompter.Confirm(ctx, title, message)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		if errors.Is(refused, domain.ErrCanceled) {
			return refused
		}
		return fmt.Errorf("%w: %w", domain.ErrCanceled, refused)
	}
	return nil
}

func (e *Editor) warnEach(msg string, err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, err := range joined.Unwrap() {
			e.logger.Warn(msg, "err", err)
		}
		return
	}
	e.logger.Warn(msg, "err", err)
}
