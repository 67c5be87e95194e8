package syncsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/metrics"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/store"
)

var (
	// ErrStopped is returned by operations on a destroyed Service.
	ErrStopped = errors.New("sync service stopped")

	// ErrNotReady is returned by Update before Init has completed.
	ErrNotReady = errors.New("sync service not initialized")
)

// State is the lifecycle state of a Service.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds configuration for the Service.
type Config struct {
	// Interval is how often persisted state is re-read and re-broadcast.
	// Zero disables the periodic refresh.
	Interval time.Duration

	// Watch enables an early refresh when the store file changes on disk
	// outside this process. Ignored for stores without a file.
	Watch bool

	// DebounceInterval batches bursts of file events into one refresh.
	DebounceInterval time.Duration

	// Reconcile, when set, runs over the dataset during the first Init. It
	// reports whether it changed anything; changed data is persisted.
	Reconcile func(*Dataset) bool

	// Seed overrides the built-in dataset written to empty collections.
	Seed *Dataset

	Logger  *zap.Logger
	Metrics *metrics.Sync

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:         30 * time.Second,
		Watch:            true,
		DebounceInterval: 250 * time.Millisecond,
		Logger:           zap.NewNop(),
		Now:              time.Now,
	}
}

// selfWriteWindow is how long after one of our own writes file events are
// attributed to that write rather than to another process.
const selfWriteWindow = time.Second

// Service mediates every read and write of the persisted collections and
// broadcasts each change to registered observers.
//
// All operations are serialized by one mutex, so concurrent callers see a
// total order of writes. Events are delivered after that mutex is
// released, in write order.
type Service struct {
	store   store.Store
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Sync

	mu         sync.Mutex
	state      State
	nextTicket uint64 // guarded by mu

	// Delivery turns, see publishAndUnlock.
	turnMu  sync.Mutex
	turn    *sync.Cond
	serving uint64

	observers *registry

	cron      *cron.Cron
	watcher   *FileWatcher
	bgCtx     context.Context
	bgCancel  context.CancelFunc
	bgWG      sync.WaitGroup
	lastWrite atomic.Int64
}

// New creates a Service over st. The Service does not own st; the caller
// closes it after Destroy.
//
// A nil cfg uses DefaultConfig().
func New(st store.Store, cfg *Config) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := *cfg
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		store:    st,
		cfg:      c,
		logger:   c.Logger.Named("sync"),
		metrics:  c.Metrics,
		bgCtx:    ctx,
		bgCancel: cancel,
	}
	s.turn = sync.NewCond(&s.turnMu)
	s.observers = &registry{onSize: s.metrics.SetObservers}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Init prepares the store and starts background refresh.
//
// The first call seeds empty collections, ensures sync metadata exists,
// reconciles derived fields when configured, arms the periodic refresh and
// broadcasts both collections. Later calls only bump lastSync. Seed and
// metadata write failures are logged, not returned.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()

	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	case StateReady:
		s.touchLocked(ctx)
		s.mu.Unlock()
		return nil
	}

	s.seedLocked(ctx)
	s.touchLocked(ctx)
	if s.cfg.Reconcile != nil {
		s.reconcileLocked(ctx)
	}
	s.startBackgroundLocked()
	s.state = StateReady

	s.logger.Info("sync service ready",
		zap.String("store", s.store.Path()),
		zap.Duration("interval", s.cfg.Interval))

	s.publishAndUnlock(s.snapshotEventsLocked(ctx))
	return nil
}

// GetData returns the persisted records of collection c. It never fails: a
// missing key, unreadable store or malformed value all yield an empty slice,
// and the failure is logged.
func (s *Service) GetData(ctx context.Context, c schema.Collection) []json.RawMessage {
	if !c.IsValid() {
		s.logger.Warn("read of unknown collection", zap.String("collection", string(c)))
		return []json.RawMessage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSoftLocked(ctx, c)
}

// SaveData replaces collection c with records and broadcasts the new
// contents.
//
// Before Init it is a no-op returning nil. After Destroy it returns
// ErrStopped. A store failure is logged and returned, and nothing is
// broadcast.
func (s *Service) SaveData(ctx context.Context, c schema.Collection, records []json.RawMessage) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", schema.ErrUnknownCollection, c)
	}

	s.mu.Lock()
	switch s.state {
	case StateUninitialized:
		s.mu.Unlock()
		s.logger.Debug("save before init ignored", zap.String("collection", string(c)))
		return nil
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	records = append([]json.RawMessage(nil), records...)

	if err := s.writeLocked(ctx, c, records); err != nil {
		s.mu.Unlock()
		return err
	}
	s.publishAndUnlock([]Event{s.event(c, records)})
	return nil
}

// Update runs fn over a copy of both collections as one serialized
// operation. If fn returns an error nothing is written. Otherwise each
// changed collection is written, collaborations first, and broadcast.
// Stored members the schema types do not declare are kept on records
// whose id survives fn.
//
// A failure writing the second collection leaves the first one written;
// the error is returned and the next reconciliation repairs the drift.
func (s *Service) Update(ctx context.Context, fn func(*Dataset) error) error {
	s.mu.Lock()
	events, err := s.updateLocked(ctx, fn)
	s.publishAndUnlock(events)
	return err
}

func (s *Service) updateLocked(ctx context.Context, fn func(*Dataset) error) ([]Event, error) {
	switch s.state {
	case StateUninitialized:
		return nil, ErrNotReady
	case StateStopped:
		return nil, ErrStopped
	}

	ds, ex, err := s.loadDatasetLocked(ctx)
	if err != nil {
		return nil, err
	}
	return s.applyLocked(ctx, ds, ex, fn)
}

// applyLocked runs fn over ds and persists whichever collections changed,
// with the undeclared members in ex carried over by record id.
func (s *Service) applyLocked(ctx context.Context, ds *Dataset, ex extraFields, fn func(*Dataset) error) ([]Event, error) {
	beforeInf, err := encodeRecords(ds.Influencers)
	if err != nil {
		return nil, err
	}
	beforeCol, err := encodeRecords(ds.Collaborations)
	if err != nil {
		return nil, err
	}

	if err := fn(ds); err != nil {
		return nil, err
	}

	afterInf, err := encodeRecords(ds.Influencers)
	if err != nil {
		return nil, err
	}
	afterCol, err := encodeRecords(ds.Collaborations)
	if err != nil {
		return nil, err
	}

	var events []Event
	if !sameRecords(beforeCol, afterCol) {
		if afterCol, err = ex.merge(schema.Collaborations, afterCol); err != nil {
			return nil, err
		}
		if err := s.writeLocked(ctx, schema.Collaborations, afterCol); err != nil {
			return events, err
		}
		events = append(events, s.event(schema.Collaborations, afterCol))
	}
	if !sameRecords(beforeInf, afterInf) {
		if afterInf, err = ex.merge(schema.Influencers, afterInf); err != nil {
			return events, err
		}
		if err := s.writeLocked(ctx, schema.Influencers, afterInf); err != nil {
			s.logger.Error("partial update: collaborations written, influencers not",
				zap.Error(err))
			return events, err
		}
		events = append(events, s.event(schema.Influencers, afterInf))
	}
	return events, nil
}

// Refresh re-reads both collections, broadcasts them and bumps lastSync.
// It is a no-op before Init and returns ErrStopped after Destroy.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateUninitialized:
		s.mu.Unlock()
		return nil
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	}

	s.touchLocked(ctx)
	s.metrics.RecordRefresh()
	s.publishAndUnlock(s.snapshotEventsLocked(ctx))
	return nil
}

// Metadata returns the persisted sync metadata.
func (s *Service) Metadata(ctx context.Context) (schema.SyncMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMetadataLocked(ctx)
}

// Destroy stops the periodic refresh and the file watcher and moves the
// Service to StateStopped. It is idempotent.
func (s *Service) Destroy() error {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopped
	c, w := s.cron, s.watcher
	s.cron, s.watcher = nil, nil
	s.mu.Unlock()

	s.bgCancel()

	if c != nil {
		<-c.Stop().Done()
	}

	var err error
	if w != nil {
		err = w.Stop()
	}
	s.bgWG.Wait()

	s.logger.Info("sync service stopped")
	return err
}

func (s *Service) startBackgroundLocked() {
	if s.cfg.Interval > 0 {
		s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		spec := fmt.Sprintf("@every %s", s.cfg.Interval)
		if _, err := s.cron.AddFunc(spec, s.periodicRefresh); err != nil {
			s.logger.Error("failed to schedule refresh", zap.String("spec", spec), zap.Error(err))
			s.cron = nil
		} else {
			s.cron.Start()
		}
	}

	path := s.store.Path()
	if !s.cfg.Watch || path == "" {
		return
	}
	w, err := NewFileWatcher()
	if err != nil {
		s.logger.Warn("file watcher unavailable", zap.Error(err))
		return
	}
	if err := w.Start(path); err != nil {
		s.logger.Warn("failed to watch store file", zap.String("path", path), zap.Error(err))
		_ = w.Stop()
		return
	}
	s.watcher = w
	s.bgWG.Add(1)
	go s.watchLoop(w)
}

func (s *Service) periodicRefresh() {
	if err := s.Refresh(s.bgCtx); err != nil && !errors.Is(err, ErrStopped) {
		s.logger.Warn("periodic refresh failed", zap.Error(err))
	}
}

// watchLoop debounces external store changes into a single Refresh.
func (s *Service) watchLoop(w *FileWatcher) {
	defer s.bgWG.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-s.bgCtx.Done():
			return

		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			if s.isOwnWrite(time.Now()) {
				continue
			}
			s.logger.Debug("store changed on disk", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(s.cfg.DebounceInterval)
			} else {
				timer.Reset(s.cfg.DebounceInterval)
			}
			fire = timer.C

		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := s.Refresh(s.bgCtx); err != nil && !errors.Is(err, ErrStopped) {
				s.logger.Warn("refresh after external change failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) isOwnWrite(now time.Time) bool {
	last := s.lastWrite.Load()
	return last != 0 && now.Sub(time.Unix(0, last)) < selfWriteWindow
}

func (s *Service) put(ctx context.Context, key string, value []byte) error {
	// Stamped on both sides: the file event can arrive before Put returns.
	s.lastWrite.Store(time.Now().UnixNano())
	err := s.store.Put(ctx, key, value)
	s.lastWrite.Store(time.Now().UnixNano())
	if err != nil {
		s.metrics.RecordStoreError("put")
	}
	return err
}

func (s *Service) writeLocked(ctx context.Context, c schema.Collection, records []json.RawMessage) error {
	done := s.metrics.TrackSave(string(c))
	start := time.Now()

	b, err := json.Marshal(records)
	if err != nil {
		done(start, err)
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}
	if err := s.put(ctx, string(c), b); err != nil {
		done(start, err)
		s.logger.Error("failed to save collection", zap.String("collection", string(c)), zap.Error(err))
		return fmt.Errorf("failed to save %s: %w", c, err)
	}
	done(start, nil)
	return nil
}

func (s *Service) readSoftLocked(ctx context.Context, c schema.Collection) []json.RawMessage {
	b, err := s.store.Get(ctx, string(c))
	if errors.Is(err, store.ErrNotFound) {
		return []json.RawMessage{}
	}
	if err != nil {
		s.metrics.RecordStoreError("get")
		s.logger.Warn("failed to read collection", zap.String("collection", string(c)), zap.Error(err))
		return []json.RawMessage{}
	}
	raws, err := splitRecords(b)
	if err != nil {
		s.logger.Warn("discarding unparseable collection", zap.String("collection", string(c)), zap.Error(err))
		return []json.RawMessage{}
	}
	return raws
}

func (s *Service) snapshotEventsLocked(ctx context.Context) []Event {
	events := make([]Event, 0, len(schema.Collections))
	for _, c := range schema.Collections {
		events = append(events, s.event(c, s.readSoftLocked(ctx, c)))
	}
	return events
}

func (s *Service) event(c schema.Collection, records []json.RawMessage) Event {
	return Event{Collection: c, Records: records, Timestamp: s.cfg.Now()}
}

func (s *Service) seedLocked(ctx context.Context) {
	seed := s.cfg.Seed
	if seed == nil {
		var err error
		if seed, err = SeedDataset(); err != nil {
			s.logger.Error("built-in seed is invalid", zap.Error(err))
			return
		}
	}

	collections := []struct {
		c       schema.Collection
		records any
	}{
		{schema.Influencers, seed.Influencers},
		{schema.Collaborations, seed.Collaborations},
	}
	for _, col := range collections {
		_, err := s.store.Get(ctx, string(col.c))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			// Unreadable is not empty; never seed over it.
			s.metrics.RecordStoreError("get")
			s.logger.Warn("skipping seed of unreadable collection", zap.String("collection", string(col.c)), zap.Error(err))
			continue
		}

		b, err := json.Marshal(col.records)
		if err != nil {
			s.logger.Error("failed to encode seed", zap.String("collection", string(col.c)), zap.Error(err))
			continue
		}
		if err := s.put(ctx, string(col.c), b); err != nil {
			s.logger.Warn("failed to seed collection", zap.String("collection", string(col.c)), zap.Error(err))
			continue
		}
		s.logger.Info("seeded collection", zap.String("collection", string(col.c)))
	}
}

func (s *Service) readMetadataLocked(ctx context.Context) (schema.SyncMetadata, error) {
	var meta schema.SyncMetadata
	b, err := s.store.Get(ctx, schema.MetadataKey)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse sync metadata: %w", err)
	}
	return meta, nil
}

// touchLocked sets lastSync to now, creating the metadata record with a new
// device id when it is missing or unreadable.
func (s *Service) touchLocked(ctx context.Context) {
	meta, err := s.readMetadataLocked(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("resetting unreadable sync metadata", zap.Error(err))
	}
	if meta.DeviceID == "" {
		meta.DeviceID = schema.NewDeviceID()
		s.logger.Info("assigned device id", zap.String("device", meta.DeviceID))
	}
	meta.LastSync = s.cfg.Now().UnixMilli()

	b, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := s.put(ctx, schema.MetadataKey, b); err != nil {
		s.logger.Warn("failed to write sync metadata", zap.Error(err))
	}
}

func (s *Service) reconcileLocked(ctx context.Context) {
	ds, ex, err := s.loadDatasetLocked(ctx)
	if err != nil {
		s.logger.Warn("skipping reconciliation", zap.Error(err))
		return
	}

	changed := false
	_, err = s.applyLocked(ctx, ds, ex, func(d *Dataset) error {
		changed = s.cfg.Reconcile(d)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to persist reconciliation", zap.Error(err))
		return
	}
	if changed {
		s.metrics.RecordRepair()
		s.logger.Info("reconciled derived fields")
	}
}

func sameRecords(a, b []json.RawMessage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}
