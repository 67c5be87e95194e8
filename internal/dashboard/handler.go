package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/rules"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/status"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// CollectionData describes a collection change.
type CollectionData struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// SyncStatusData mirrors the sync indicator.
type SyncStatusData struct {
	State    string    `json:"state"`
	LastSync time.Time `json:"last_sync,omitzero"`
	Error    string    `json:"error,omitempty"`
}

// Handler subscribes to the sync service and turns its events into
// dashboard messages. It only reads from the service.
type Handler struct {
	server *Server
	roster *rules.Roster
	logger *zap.Logger
	sub    *syncsvc.Subscription

	mu    sync.Mutex
	stats rules.Summary
}

// NewHandler creates a handler that reports on roster through server.
func NewHandler(server *Server, roster *rules.Roster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		server: server,
		roster: roster,
		logger: logger.Named("dashboard"),
	}
	server.SetWelcome(h.welcome)
	return h
}

// Attach computes the initial stats and subscribes to svc.
func (h *Handler) Attach(ctx context.Context, svc *syncsvc.Service) {
	h.UpdateStats(ctx)
	h.sub = svc.Subscribe(h.OnEvent, schema.Influencers, schema.Collaborations)
}

// Close unsubscribes from the service.
func (h *Handler) Close() {
	if h.sub != nil {
		h.sub.Close()
	}
}

// OnEvent forwards a collection change and the recomputed stats.
func (h *Handler) OnEvent(e syncsvc.Event) {
	typ := MessageTypeInfluencers
	if e.Collection == schema.Collaborations {
		typ = MessageTypeCollaborations
	}
	h.logger.Debug("collection changed", zap.String("event", e.Name()), zap.Int("records", len(e.Records)))

	h.server.BroadcastData(typ, CollectionData{Event: e.Name(), Count: len(e.Records)})
	h.UpdateStats(context.Background())
}

// OnSyncStatus forwards an indicator change. It matches status.Config's
// OnChange signature.
func (h *Handler) OnSyncStatus(snap status.Snapshot) {
	data := SyncStatusData{State: snap.State.String(), LastSync: snap.LastSync}
	if snap.Err != nil {
		data.Error = snap.Err.Error()
	}
	h.server.BroadcastData(MessageTypeSyncStatus, data)
}

// UpdateStats recomputes roster totals and broadcasts them.
func (h *Handler) UpdateStats(ctx context.Context) {
	stats := h.roster.Summary(ctx)

	h.mu.Lock()
	h.stats = stats
	h.mu.Unlock()

	h.server.BroadcastData(MessageTypeStats, stats)
}

// Stats returns the last computed totals.
func (h *Handler) Stats() rules.Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

func (h *Handler) welcome() Message {
	msg, err := newMessage(MessageTypeStats, h.Stats())
	if err != nil {
		return Message{Type: MessageTypeStats, Timestamp: time.Now()}
	}
	return msg
}
