// Package binding gives a view component a live, typed snapshot of one
// collection.
//
// A Binding loads the collection asynchronously, replaces its snapshot on
// every broadcast for that collection while it has no save of its own in
// flight, and applies saves optimistically:
// RequestSave updates the snapshot at once and hands the write to a single
// writer goroutine, so writes from one binding reach the store in call
// order.
package binding

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// ErrClosed is returned for saves requested after Close.
var ErrClosed = errors.New("binding closed")

type saveRequest[T schema.Record] struct {
	records []T
	result  chan error
}

// Binding is a live view of the collection holding T.
type Binding[T schema.Record] struct {
	svc        *syncsvc.Service
	collection schema.Collection
	logger     *zap.Logger
	writeCtx   context.Context

	mu      sync.Mutex
	cond    *sync.Cond
	records []T
	version uint64
	loading bool
	pending []saveRequest[T]
	writing int // saves requested and not yet finished
	closed  bool

	loaded     chan struct{}
	loadedOnce sync.Once
	writerDone chan struct{}
	sub        *syncsvc.Subscription
}

// Bind subscribes to the collection of T and starts loading it. A nil
// logger disables logging.
func Bind[T schema.Record](ctx context.Context, svc *syncsvc.Service, logger *zap.Logger) *Binding[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Binding[T]{
		svc:        svc,
		collection: schema.CollectionOf[T](),
		writeCtx:   context.WithoutCancel(ctx),
		records:    []T{},
		loading:    true,
		loaded:     make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	b.logger = logger.Named("binding").With(zap.String("collection", string(b.collection)))
	b.cond = sync.NewCond(&b.mu)

	b.sub = svc.Subscribe(b.onEvent, b.collection)
	go b.load(ctx)
	go b.writer()
	return b
}

// Loading reports whether the initial load is still in flight.
func (b *Binding[T]) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Wait blocks until the initial load completes or ctx is done.
func (b *Binding[T]) Wait(ctx context.Context) error {
	select {
	case <-b.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Records returns a copy of the current snapshot.
func (b *Binding[T]) Records() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]T(nil), b.records...)
}

// RequestSave replaces the snapshot with records immediately and queues
// the full collection for writing. The returned channel receives the
// result of the write, then nothing else.
func (b *Binding[T]) RequestSave(records []T) <-chan error {
	result := make(chan error, 1)
	snapshot := append([]T{}, records...)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		result <- ErrClosed
		return result
	}
	b.records = snapshot
	b.version++
	b.writing++
	b.pending = append(b.pending, saveRequest[T]{records: snapshot, result: result})
	b.cond.Signal()
	return result
}

// Close writes any queued saves, then unsubscribes. Safe to call more than
// once.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.writerDone
		return
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	<-b.writerDone
	b.sub.Close()
}

func (b *Binding[T]) load(ctx context.Context) {
	records := syncsvc.Get[T](ctx, b.svc)

	b.mu.Lock()
	// A broadcast or local save that landed first is newer than this read.
	if b.version == 0 {
		b.records = records
	}
	b.loading = false
	b.mu.Unlock()

	b.markLoaded()
}

func (b *Binding[T]) onEvent(e syncsvc.Event) {
	records, err := syncsvc.Decode[T](e)
	if err != nil {
		b.logger.Warn("ignoring undecodable broadcast", zap.Error(err))
		return
	}

	b.mu.Lock()
	// While our own saves are in flight the optimistic snapshot is newer
	// than anything broadcast; the last of them brings the store level.
	if b.writing == 0 {
		b.records = records
		b.version++
	}
	b.loading = false
	b.mu.Unlock()

	b.markLoaded()
}

func (b *Binding[T]) markLoaded() {
	b.loadedOnce.Do(func() { close(b.loaded) })
}

func (b *Binding[T]) writer() {
	defer close(b.writerDone)

	for {
		b.mu.Lock()
		for len(b.pending) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.pending) == 0 {
			b.mu.Unlock()
			return
		}
		req := b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()

		err := syncsvc.Save(b.writeCtx, b.svc, req.records)
		if err != nil {
			b.logger.Warn("save failed", zap.Error(err))
		}

		b.mu.Lock()
		b.writing--
		b.mu.Unlock()
		req.result <- err
	}
}
