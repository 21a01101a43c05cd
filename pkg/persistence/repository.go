// Package persistence stores projects and poses in a DocumentStore.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/codec"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/ports"
	"github.com/aretw0/act/pkg/session"
)

// Document key layout inside a store.
const (
	ProjectPrefix = "projects/"
	PosePrefix    = "poses/"
	ScenePrefix   = "scenes/"
	Extension     = ".json"
)

// Repository encodes projects and poses and moves them through a session
// Manager so that concurrent saves of one key are serialized.
type Repository struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the Repository.
type Option func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository wraps a store. Use NewRepositoryWithManager to share a Manager.
func NewRepository(store ports.DocumentStore, opts ...Option) *Repository {
	return NewRepositoryWithManager(session.NewManager(store), opts...)
}

// NewRepositoryWithManager builds a repository over an existing Manager.
func NewRepositoryWithManager(m *session.Manager, opts ...Option) *Repository {
	r := &Repository{sessions: m, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProjectKey maps a project name to its store key. Names already carrying
// the prefix or extension are left as they are.
func ProjectKey(name string) string {
	return documentKey(ProjectPrefix, name)
}

// PoseKey maps a pose name to its store key.
func PoseKey(name string) string {
	return documentKey(PosePrefix, name)
}

// SceneKey maps a project and context to the key of the live rig pose kept
// alongside it, for hosts that do not keep their scene between sessions.
func SceneKey(project string, kind domain.ContextKind) string {
	name := strings.TrimSuffix(strings.TrimPrefix(ProjectKey(project), ProjectPrefix), Extension)
	return documentKey(ScenePrefix, name+"."+kind.String())
}

func documentKey(prefix, name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if !strings.HasPrefix(name, prefix) {
		name = prefix + name
	}
	if path.Ext(name) != Extension {
		name += Extension
	}
	return name
}

// SaveProject encodes p and stores it under the project key for name.
func (r *Repository) SaveProject(ctx context.Context, name string, p *domain.Project) error {
	data, err := codec.EncodeProject(p)
	if err != nil {
		return err
	}
	key := ProjectKey(name)
	if err := r.sessions.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save project %q: %w", key, err)
	}
	r.logger.Debug("project saved", "key", key, "bytes", len(data))
	return nil
}

// LoadProject reads and decodes the project stored under name.
func (r *Repository) LoadProject(ctx context.Context, name string) (*domain.Project, error) {
	key := ProjectKey(name)
	data, err := r.sessions.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", key, err)
	}
	p, err := codec.DecodeProject(data)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", key, err)
	}
	r.logger.Debug("project loaded", "key", key, "model", p.SourceModelName)
	return p, nil
}

// SavePose encodes p and stores it under the pose key for name.
func (r *Repository) SavePose(ctx context.Context, name string, p *domain.Pose) error {
	return r.savePose(ctx, PoseKey(name), p)
}

// LoadPose reads and decodes the pose stored under name.
func (r *Repository) LoadPose(ctx context.Context, name string) (*domain.Pose, error) {
	return r.loadPose(ctx, PoseKey(name))
}

// SaveScene stores the live rig pose of a project context.
func (r *Repository) SaveScene(ctx context.Context, project string, kind domain.ContextKind, p *domain.Pose) error {
	return r.savePose(ctx, SceneKey(project, kind), p)
}

// LoadScene reads the live rig pose saved with SaveScene.
func (r *Repository) LoadScene(ctx context.Context, project string, kind domain.ContextKind) (*domain.Pose, error) {
	return r.loadPose(ctx, SceneKey(project, kind))
}

func (r *Repository) savePose(ctx context.Context, key string, p *domain.Pose) error {
	data, err := codec.EncodePose(p)
	if err != nil {
		return err
	}
	if err := r.sessions.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save pose %q: %w", key, err)
	}
	r.logger.Debug("pose saved", "key", key, "bones", len(p.Bones))
	return nil
}

func (r *Repository) loadPose(ctx context.Context, key string) (*domain.Pose, error) {
	data, err := r.sessions.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load pose %q: %w", key, err)
	}
	p, err := codec.DecodePose(data)
	if err != nil {
		return nil, fmt.Errorf("pose %q: %w", key, err)
	}
	return p, nil
}

// ListProjects returns the stored project keys.
func (r *Repository) ListProjects(ctx context.Context) ([]string, error) {
	return r.list(ctx, ProjectPrefix)
}

// ListPoses returns the stored pose keys.
func (r *Repository) ListPoses(ctx context.Context) ([]string, error) {
	return r.list(ctx, PosePrefix)
}

func (r *Repository) list(ctx context.Context, prefix string) ([]string, error) {
	keys, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Delete removes a stored document by its full key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.sessions.Delete(ctx, key)
}
