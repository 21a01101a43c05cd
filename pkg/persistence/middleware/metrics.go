package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics counts and times document store operations.
type StoreMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewStoreMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "act_store_operations_total",
				Help: "Total number of document store operations",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "act_store_operation_duration_seconds",
				Help:    "Duration of document store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.duration)
	}
	return m
}

// Ops exposes the operation counter.
func (m *StoreMetrics) Ops() *prometheus.CounterVec { return m.ops }

// Middleware returns a store middleware recording into m.
func (m *StoreMetrics) Middleware() Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

type metricsMiddleware struct {
	next    ports.DocumentStore
	metrics *StoreMetrics
}

func (s *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	s.metrics.ops.WithLabelValues(op, result).Inc()
	s.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *metricsMiddleware) Save(ctx context.Context, key string, data []byte) (err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())
	return s.next.Save(ctx, key, data)
}

func (s *metricsMiddleware) Load(ctx context.Context, key string) (data []byte, err error) {
	defer func(start time.Time) { s.observe("load", start, err) }(time.Now())
	return s.next.Load(ctx, key)
}

func (s *metricsMiddleware) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, key)
}

func (s *metricsMiddleware) List(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}
