package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/talentdesk/talentdesk/internal/metrics"
	"github.com/talentdesk/talentdesk/internal/rules"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/status"
	"github.com/talentdesk/talentdesk/internal/store"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

func startServer(t *testing.T, reg *prometheus.Registry) *Server {
	t.Helper()
	config := &Config{
		Port:   0,
		Logger: zaptest.NewLogger(t),
	}
	if reg != nil {
		config.Metrics = metrics.NewDashboard(reg)
		config.Gatherer = reg
	}

	server := NewServer(config)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func dial(t *testing.T, ctx context.Context, server *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

// readUntil reads messages until one of type typ arrives and returns the
// types seen on the way, including the match.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ MessageType) (Message, []MessageType) {
	t.Helper()
	var seen []MessageType
	for {
		msg := readMessage(t, ctx, conn)
		seen = append(seen, msg.Type)
		if msg.Type == typ {
			return msg, seen
		}
	}
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(&Config{Port: 0})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	if !strings.HasPrefix(server.Addr(), "127.0.0.1:") {
		t.Errorf("Addr() = %q, want loopback", server.Addr())
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	if err := NewServer(nil).Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestWebSocketConnection(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := startServer(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, server)
	if msg := readMessage(t, ctx, conn); msg.Type != MessageTypeStats {
		t.Errorf("welcome type = %s, want %s", msg.Type, MessageTypeStats)
	}

	if count := server.ClientCount(); count != 1 {
		t.Errorf("ClientCount() = %d, want 1", count)
	}
	if got := testutil.ToFloat64(server.metrics.Clients); got != 1 {
		t.Errorf("clients gauge = %v, want 1", got)
	}
}

func TestMultipleClientsBroadcast(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := startServer(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const numClients = 3
	clients := make([]*websocket.Conn, numClients)
	for i := range clients {
		clients[i] = dial(t, ctx, server)
		readMessage(t, ctx, clients[i])
	}
	if count := server.ClientCount(); count != numClients {
		t.Errorf("ClientCount() = %d, want %d", count, numClients)
	}

	server.BroadcastData(MessageTypeInfluencers, CollectionData{Event: "influencersUpdated", Count: 7})

	for i, conn := range clients {
		msg := readMessage(t, ctx, conn)
		if msg.Type != MessageTypeInfluencers {
			t.Fatalf("client %d got %s", i, msg.Type)
		}
		var data CollectionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			t.Fatalf("Failed to unmarshal data: %v", err)
		}
		if data.Count != 7 || data.Event != "influencersUpdated" {
			t.Errorf("client %d data = %+v", i, data)
		}
	}

	got := testutil.ToFloat64(server.metrics.BroadcastsTotal.WithLabelValues(string(MessageTypeInfluencers)))
	if got != 1 {
		t.Errorf("broadcasts_total = %v, want 1", got)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := startServer(t, reg)
	base := "http://" + server.Addr()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["clients"] != float64(0) {
		t.Errorf("health = %v", health)
	}

	mresp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer mresp.Body.Close()
	body, _ := io.ReadAll(mresp.Body)
	if !strings.Contains(string(body), "talentdesk_dashboard_clients") {
		t.Errorf("/metrics missing dashboard gauge:\n%s", body)
	}

	nresp, err := http.Get(base + "/nope")
	if err != nil {
		t.Fatalf("GET /nope failed: %v", err)
	}
	nresp.Body.Close()
	if nresp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", nresp.StatusCode)
	}
}

func newRoster(t *testing.T) (*rules.Roster, *syncsvc.Service) {
	t.Helper()
	cfg := syncsvc.DefaultConfig()
	cfg.Interval = 0
	cfg.Watch = false
	cfg.Reconcile = rules.Reconcile

	svc, err := syncsvc.New(store.NewMemory(), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Destroy() })
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return rules.NewRoster(svc, nil, nil), svc
}

func TestHandler_WelcomeCarriesStats(t *testing.T) {
	roster, svc := newRoster(t)
	server := startServer(t, nil)
	h := NewHandler(server, roster, nil)
	h.Attach(context.Background(), svc)
	defer h.Close()

	if got := h.Stats().Influencers; got != 3 {
		t.Fatalf("Stats().Influencers = %d, want 3 from seed", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dial(t, ctx, server)

	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("welcome type = %s", msg.Type)
	}
	var stats rules.Summary
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		t.Fatalf("Failed to unmarshal stats: %v", err)
	}
	if stats.Influencers != 3 || stats.Collaborations != 5 || stats.TotalFee != 19600 {
		t.Errorf("welcome stats = %+v", stats)
	}
}

func TestHandler_ForwardsRosterChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roster, svc := newRoster(t)
	server := startServer(t, nil)
	h := NewHandler(server, roster, nil)
	h.Attach(ctx, svc)
	defer h.Close()

	conn := dial(t, ctx, server)
	readMessage(t, ctx, conn)

	_, err := roster.AddCollaboration(ctx, schema.Collaboration{
		Brand: "Nike", InfluencerID: "1", Fee: 1000, CollaborationCount: 1,
		AssignedTo: "CAN AYDIN", Date: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("AddCollaboration() failed: %v", err)
	}

	msg, seen := readUntil(t, ctx, conn, MessageTypeCollaborations)
	var data CollectionData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
	if data.Count != 6 || data.Event != "collaborationsUpdated" {
		t.Errorf("collaborations data = %+v (seen %v)", data, seen)
	}

	msg, _ = readUntil(t, ctx, conn, MessageTypeInfluencers)
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
	if data.Count != 3 {
		t.Errorf("influencers data = %+v", data)
	}

	stats, _ := readUntil(t, ctx, conn, MessageTypeStats)
	var summary rules.Summary
	if err := json.Unmarshal(stats.Data, &summary); err != nil {
		t.Fatalf("Failed to unmarshal stats: %v", err)
	}
	if summary.Collaborations != 6 {
		t.Errorf("stats.Collaborations = %d, want 6", summary.Collaborations)
	}
}

func TestHandler_SyncStatus(t *testing.T) {
	roster, _ := newRoster(t)
	server := startServer(t, nil)
	h := NewHandler(server, roster, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dial(t, ctx, server)
	readMessage(t, ctx, conn)

	h.OnSyncStatus(status.Snapshot{State: status.Failed, Err: errors.New("disk full")})

	msg, _ := readUntil(t, ctx, conn, MessageTypeSyncStatus)
	var data SyncStatusData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
	if data.State != "error" || data.Error != "disk full" {
		t.Errorf("sync status = %+v", data)
	}
}
