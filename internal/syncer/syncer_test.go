package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

type fakeStore struct {
	saved []model.Snapshot
	err   error
}

func (f *fakeStore) Save(_ context.Context, snap model.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, snap)
	return nil
}

func (f *fakeStore) Load(context.Context) (model.Snapshot, bool, error) {
	if len(f.saved) == 0 {
		return model.Snapshot{}, false, nil
	}
	return f.saved[len(f.saved)-1], true, nil
}

func TestSyncOnce(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)
	if s.Status() != StatusIdle {
		t.Fatalf("initial status %s, want idle", s.Status())
	}

	s.syncOnce(context.Background(), model.Snapshot{Version: model.SnapshotVersion})
	if s.Status() != StatusSynced {
		t.Fatalf("status %s, want synced", s.Status())
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d snapshots, want 1", len(store.saved))
	}
}

func TestSyncOnceFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("backend down")}
	s := New(store, nil)

	s.syncOnce(context.Background(), model.Snapshot{Version: model.SnapshotVersion})
	if s.Status() != StatusError {
		t.Fatalf("status %s, want error", s.Status())
	}
}

func TestSyncOnceTimeoutIsOffline(t *testing.T) {
	store := &fakeStore{err: context.DeadlineExceeded}
	s := New(store, nil)

	s.syncOnce(context.Background(), model.Snapshot{Version: model.SnapshotVersion})
	if s.Status() != StatusOffline {
		t.Fatalf("status %s, want offline", s.Status())
	}
}

func TestRestore(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	if _, ok, err := s.Restore(context.Background()); err != nil || ok {
		t.Fatalf("empty backend: ok=%v err=%v", ok, err)
	}

	s.syncOnce(context.Background(), model.Snapshot{Version: model.SnapshotVersion, TrackingStartDate: "2024-01-01"})
	snap, ok, err := s.Restore(context.Background())
	if err != nil || !ok {
		t.Fatalf("restore failed: ok=%v err=%v", ok, err)
	}
	if snap.TrackingStartDate != "2024-01-01" {
		t.Fatalf("restored wrong snapshot: %+v", snap)
	}
}
