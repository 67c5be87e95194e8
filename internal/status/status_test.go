package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/store"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

func newService(t *testing.T) *syncsvc.Service {
	t.Helper()
	cfg := syncsvc.DefaultConfig()
	cfg.Interval = 0
	cfg.Watch = false
	svc, err := syncsvc.New(store.NewMemory(), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Destroy() })
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return svc
}

func TestFormatLastSync(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Az önce"},
		{-5 * time.Second, "Az önce"},
		{time.Minute, "1 dakika önce"},
		{5*time.Minute + 30*time.Second, "5 dakika önce"},
		{3 * time.Hour, "3 saat önce"},
		{48 * time.Hour, "11.03.2024 12:00"},
	}
	for _, tt := range tests {
		if got := FormatLastSync(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatLastSync(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := FormatLastSync(time.Time{}, now); got != "Henüz senkronize edilmedi" {
		t.Errorf("FormatLastSync(zero) = %q", got)
	}
}

func TestIndicator_SeededFromMetadata(t *testing.T) {
	svc := newService(t)
	ind := New(context.Background(), svc, &Config{})
	defer ind.Close()

	snap := ind.Snapshot()
	if snap.State != Synced || snap.LastSync.IsZero() {
		t.Errorf("Snapshot() = %+v, want synced with last sync from Init", snap)
	}
}

func TestIndicator_Events(t *testing.T) {
	svc := newService(t)

	var mu sync.Mutex
	var states []State
	settled := make(chan struct{}, 1)
	ind := New(context.Background(), svc, &Config{
		Settle: 200 * time.Millisecond,
		OnChange: func(s Snapshot) {
			mu.Lock()
			states = append(states, s.State)
			mu.Unlock()
			if s.State == Synced {
				settled <- struct{}{}
			}
		},
	})
	defer ind.Close()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if got := ind.Snapshot().State; got != Syncing {
		t.Errorf("State after event = %s, want syncing", got)
	}
	if ind.Label() != "Senkronize ediliyor..." {
		t.Errorf("Label() = %q", ind.Label())
	}

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("indicator never settled")
	}

	mu.Lock()
	defer mu.Unlock()
	// Refresh emits one event per collection; the second resets the timer.
	if states[len(states)-1] != Synced {
		t.Errorf("states = %v, want to end synced", states)
	}
	for _, s := range states[:len(states)-1] {
		if s != Syncing {
			t.Errorf("states = %v, want only syncing before settle", states)
		}
	}
}

func TestIndicator_ReportError(t *testing.T) {
	svc := newService(t)
	ind := New(context.Background(), svc, &Config{})
	defer ind.Close()

	boom := errors.New("disk full")
	ind.ReportError(boom)
	snap := ind.Snapshot()
	if snap.State != Failed || !errors.Is(snap.Err, boom) {
		t.Errorf("Snapshot() = %+v, want error state", snap)
	}
	if ind.Label() != "Senkronizasyon hatası!" {
		t.Errorf("Label() = %q", ind.Label())
	}

	if err := syncsvc.Save(context.Background(), svc, []schema.Influencer{}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if snap := ind.Snapshot(); snap.State != Synced || snap.Err != nil {
		t.Errorf("Snapshot() after save = %+v, want synced", snap)
	}
}

func TestIndicator_Close(t *testing.T) {
	svc := newService(t)
	calls := 0
	ind := New(context.Background(), svc, &Config{OnChange: func(Snapshot) { calls++ }})
	ind.Close()
	ind.Close()

	_ = svc.Refresh(context.Background())
	if calls != 0 {
		t.Errorf("closed indicator received %d changes", calls)
	}
}
