// Package storage opens the document store selected by the settings and
// assembles the repository the editor persists through.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/adapters/file"
	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/adapters/redis"
	"github.com/aretw0/act/pkg/adapters/sqlite"
	"github.com/aretw0/act/pkg/persistence"
	"github.com/aretw0/act/pkg/persistence/middleware"
	"github.com/aretw0/act/pkg/ports"
	"github.com/aretw0/act/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultDatabase is the SQLite file used when the location is a directory.
const DefaultDatabase = "act.db"

// Backend is an opened store with its optional lock service.
type Backend struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker

	closers []func() error
}

// Close releases the connections held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

type options struct {
	registerer prometheus.Registerer
	logger     *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithRegisterer enables store metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithLogger sets the logger handed to the session manager and repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open builds the raw store for s.Store.Backend and wraps it with the
// middleware chain: metrics outermost, then encryption when a key is set.
func Open(s config.StoreSettings, key []byte, opts ...Option) (*Backend, error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{}
	switch s.Backend {
	case "", config.BackendFile:
		b.Store = file.New(s.Location)
	case config.BackendMemory:
		b.Store = memory.NewStore()
	case config.BackendSQLite:
		path := s.Location
		if path == "" || filepath.Ext(path) == "" {
			path = filepath.Join(path, DefaultDatabase)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		b.Store = st
		b.closers = append(b.closers, st.Close)
	case config.BackendRedis:
		var ropts []redis.Option
		if s.TTL > 0 {
			ropts = append(ropts, redis.WithTTL(s.TTL))
		}
		st := redis.New(s.RedisAddr, s.RedisPassword, s.RedisDB, ropts...)
		b.Store = st
		b.Locker = redis.NewLocker(st.Client(), "act:lock:")
		b.closers = append(b.closers, st.Close)
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.Backend)
	}

	var mws []middleware.Middleware
	if o.registerer != nil {
		mws = append(mws, middleware.NewStoreMetrics(o.registerer).Middleware())
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(b.Store, mws...)

	o.logger.Debug("Store opened", "backend", s.Backend, "location", s.Location, "encrypted", key != nil)
	return b, nil
}

// Repository builds the project repository over b, sharing its locker.
func (b *Backend) Repository(logger *slog.Logger) *persistence.Repository {
	if logger == nil {
		logger = logging.NewNop()
	}
	sopts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		sopts = append(sopts, session.WithLocker(b.Locker))
	}
	return persistence.NewRepositoryWithManager(
		session.NewManager(b.Store, sopts...),
		persistence.WithLogger(logger),
	)
}
