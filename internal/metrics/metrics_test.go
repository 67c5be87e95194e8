package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSync_TrackSave(t *testing.T) {
	m := NewSync(prometheus.NewRegistry())

	m.TrackSave("influencers")(time.Now(), nil)
	m.TrackSave("influencers")(time.Now(), errors.New("boom"))
	m.TrackSave("influencers")(time.Now(), nil)

	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("influencers", "ok")); got != 2 {
		t.Errorf("ok saves = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("influencers", "error")); got != 1 {
		t.Errorf("error saves = %v, want 1", got)
	}
}

func TestSync_Counters(t *testing.T) {
	m := NewSync(prometheus.NewRegistry())

	m.RecordRefresh()
	m.RecordRefresh()
	m.RecordStoreError("get")
	m.RecordDeliveries("collaborations", 3)
	m.RecordDeliveries("collaborations", 0)
	m.SetObservers(4)

	if got := testutil.ToFloat64(m.RefreshesTotal); got != 2 {
		t.Errorf("refreshes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("get")); got != 1 {
		t.Errorf("store errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("collaborations")); got != 3 {
		t.Errorf("deliveries = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Observers); got != 4 {
		t.Errorf("observers = %v, want 4", got)
	}
}

func TestNilReceivers(t *testing.T) {
	var s *Sync
	s.TrackSave("influencers")(time.Now(), nil)
	s.RecordStoreError("put")
	s.RecordRefresh()
	s.RecordDeliveries("x", 1)
	s.SetObservers(1)
	s.RecordRepair()

	var d *Dashboard
	d.SetClients(2)
	d.RecordBroadcast("stats")
}

func TestDashboard(t *testing.T) {
	m := NewDashboard(prometheus.NewRegistry())
	m.SetClients(3)
	m.RecordBroadcast("sync_event")

	if got := testutil.ToFloat64(m.Clients); got != 3 {
		t.Errorf("clients = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BroadcastsTotal.WithLabelValues("sync_event")); got != 1 {
		t.Errorf("broadcasts = %v, want 1", got)
	}
}
