// Package status tracks sync freshness for display. An Indicator is a
// read-only observer of the sync service.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// State is the indicator state.
type State int

const (
	Synced State = iota
	Syncing
	Failed
)

func (s State) String() string {
	switch s {
	case Synced:
		return "synced"
	case Syncing:
		return "syncing"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Snapshot is a point-in-time view of an Indicator.
type Snapshot struct {
	State    State
	LastSync time.Time
	Err      error
}

// Config configures an Indicator.
type Config struct {
	// Settle is how long the indicator shows Syncing after an event.
	// Zero reports Synced immediately.
	Settle time.Duration

	Now func() time.Time

	// OnChange is called after every state change, outside the lock.
	OnChange func(Snapshot)
}

// DefaultConfig returns a one second settle time.
func DefaultConfig() *Config {
	return &Config{Settle: time.Second, Now: time.Now}
}

// Indicator follows both collections and reports when they last changed.
type Indicator struct {
	cfg *Config
	sub *syncsvc.Subscription

	mu     sync.Mutex
	snap   Snapshot
	timer  *time.Timer
	closed bool
}

// New creates an Indicator seeded from the stored sync metadata and
// subscribes it to svc.
func New(ctx context.Context, svc *syncsvc.Service, cfg *Config) *Indicator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ind := &Indicator{cfg: cfg}
	if meta, err := svc.Metadata(ctx); err == nil && meta.LastSync > 0 {
		ind.snap.LastSync = time.UnixMilli(meta.LastSync)
	}
	ind.sub = svc.Subscribe(ind.onEvent, schema.Influencers, schema.Collaborations)
	return ind
}

func (ind *Indicator) onEvent(e syncsvc.Event) {
	ind.mu.Lock()
	if ind.closed {
		ind.mu.Unlock()
		return
	}
	ind.snap.LastSync = e.Timestamp
	ind.snap.Err = nil
	if ind.cfg.Settle <= 0 {
		ind.snap.State = Synced
		ind.changedAndUnlock()
		return
	}

	ind.snap.State = Syncing
	if ind.timer != nil {
		ind.timer.Stop()
	}
	ind.timer = time.AfterFunc(ind.cfg.Settle, ind.settle)
	ind.changedAndUnlock()
}

func (ind *Indicator) settle() {
	ind.mu.Lock()
	if ind.closed || ind.snap.State != Syncing {
		ind.mu.Unlock()
		return
	}
	ind.snap.State = Synced
	ind.changedAndUnlock()
}

// ReportError puts the indicator into the error state until the next
// successful sync event.
func (ind *Indicator) ReportError(err error) {
	if err == nil {
		return
	}
	ind.mu.Lock()
	if ind.closed {
		ind.mu.Unlock()
		return
	}
	if ind.timer != nil {
		ind.timer.Stop()
	}
	ind.snap.State = Failed
	ind.snap.Err = err
	ind.changedAndUnlock()
}

func (ind *Indicator) changedAndUnlock() {
	snap := ind.snap
	ind.mu.Unlock()
	if ind.cfg.OnChange != nil {
		ind.cfg.OnChange(snap)
	}
}

// Snapshot returns the current state.
func (ind *Indicator) Snapshot() Snapshot {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.snap
}

// Label renders the current state as shown to agency staff.
func (ind *Indicator) Label() string {
	snap := ind.Snapshot()
	switch snap.State {
	case Syncing:
		return "Senkronize ediliyor..."
	case Failed:
		return "Senkronizasyon hatası!"
	}
	return "Son senkronizasyon: " + FormatLastSync(snap.LastSync, ind.cfg.Now())
}

// Close unsubscribes the indicator. It is safe to call more than once.
func (ind *Indicator) Close() {
	ind.mu.Lock()
	ind.closed = true
	if ind.timer != nil {
		ind.timer.Stop()
	}
	ind.mu.Unlock()
	ind.sub.Close()
}

var turkishMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "Az önce", DivBy: time.Second},
	{D: time.Hour, Format: "%d dakika %s", DivBy: time.Minute},
	{D: 24 * time.Hour, Format: "%d saat %s", DivBy: time.Hour},
}

// FormatLastSync renders t relative to now in Turkish. Times older than a
// day are shown as a date.
func FormatLastSync(t, now time.Time) string {
	if t.IsZero() {
		return "Henüz senkronize edilmedi"
	}
	if d := now.Sub(t); d >= 24*time.Hour {
		return t.Local().Format("02.01.2006 15:04")
	} else if d < 0 {
		return "Az önce"
	}
	return humanize.CustomRelTime(t, now, "önce", "sonra", turkishMagnitudes)
}
