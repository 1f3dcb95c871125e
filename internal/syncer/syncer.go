package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// Status is the sync-status signal owned by the persistence collaborator.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

// SnapshotStore persists the single serializable snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Load(ctx context.Context) (model.Snapshot, bool, error)
}

// Syncer drains snapshot changes and writes them to a backend
// fire-and-forget. The tracker never waits on it; failures only move the
// status signal, never the state.
type Syncer struct {
	store       SnapshotStore
	saveTimeout time.Duration

	mu     sync.RWMutex
	status Status

	saves *prometheus.CounterVec
}

// New creates a syncer over the given backend. Metrics registration is
// optional; pass nil to skip.
func New(store SnapshotStore, reg prometheus.Registerer) *Syncer {
	s := &Syncer{
		store:       store,
		saveTimeout: 5 * time.Second,
		status:      StatusIdle,
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendly_snapshot_saves_total",
			Help: "Snapshot save attempts by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(s.saves)
	}
	return s
}

// Status returns the current sync-status signal.
func (s *Syncer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Syncer) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Run consumes snapshots until the context ends.
func (s *Syncer) Run(ctx context.Context, changes <-chan model.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-changes:
			if !ok {
				return
			}
			s.syncOnce(ctx, snap)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context, snap model.Snapshot) {
	s.setStatus(StatusSyncing)
	saveCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	if err := s.store.Save(saveCtx, snap); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.setStatus(StatusOffline)
		} else {
			s.setStatus(StatusError)
		}
		s.saves.WithLabelValues("failure").Inc()
		log.Warn().Err(err).Msg("snapshot sync failed")
		return
	}
	s.saves.WithLabelValues("success").Inc()
	s.setStatus(StatusSynced)
}

// Restore loads the last saved snapshot, if any.
func (s *Syncer) Restore(ctx context.Context) (model.Snapshot, bool, error) {
	return s.store.Load(ctx)
}
