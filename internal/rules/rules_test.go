package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T) *syncsvc.Dataset {
	t.Helper()
	ds, err := syncsvc.SeedDataset()
	if err != nil {
		t.Fatalf("SeedDataset() failed: %v", err)
	}
	return ds
}

func countOf(t *testing.T, ds *syncsvc.Dataset, id string) int {
	t.Helper()
	i := ds.Influencer(id)
	if i < 0 {
		t.Fatalf("influencer %s missing", id)
	}
	return ds.Influencers[i].CollaborationCount
}

// assertConsistent checks both cross-entity invariants.
func assertConsistent(t *testing.T, ds *syncsvc.Dataset) {
	t.Helper()
	refs := make(map[string]int)
	for _, c := range ds.Collaborations {
		if c.InfluencerID == "" {
			continue
		}
		i := ds.Influencer(c.InfluencerID)
		if i < 0 {
			t.Errorf("collaboration %s references missing influencer %s", c.ID, c.InfluencerID)
			continue
		}
		if c.InfluencerName != ds.Influencers[i].Name {
			t.Errorf("collaboration %s name = %q, want %q", c.ID, c.InfluencerName, ds.Influencers[i].Name)
		}
		refs[c.InfluencerID]++
	}
	for _, inf := range ds.Influencers {
		if inf.CollaborationCount != refs[inf.ID] {
			t.Errorf("influencer %s count = %d, want %d", inf.ID, inf.CollaborationCount, refs[inf.ID])
		}
	}
}

func newCollab(influencerID string) schema.Collaboration {
	return schema.Collaboration{
		Brand:        "Nike",
		Date:         "2024-06-10",
		Fee:          1000,
		AssignedTo:   "CAN AYDIN",
		InfluencerID: influencerID,
	}
}

func TestAddInfluencer(t *testing.T) {
	ds := seed(t)
	inf, err := AddInfluencer(ds, schema.Influencer{
		Name: "Elif", Brand: "Zara", Fee: 100, CollaborationCount: 42,
	}, testNow)
	if err != nil {
		t.Fatalf("AddInfluencer() failed: %v", err)
	}

	if inf.ID == "" {
		t.Error("ID not assigned")
	}
	if inf.CollaborationCount != 0 {
		t.Errorf("CollaborationCount = %d, want 0 (derived)", inf.CollaborationCount)
	}
	if inf.CreatedAt == nil || !inf.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", inf.CreatedAt, testNow)
	}
	if inf.Status != schema.StatusPending {
		t.Errorf("Status = %q, want Pending", inf.Status)
	}
	if len(ds.Influencers) != 4 {
		t.Errorf("len(Influencers) = %d, want 4", len(ds.Influencers))
	}
	assertConsistent(t, ds)
}

func TestAddInfluencer_Invalid(t *testing.T) {
	ds := seed(t)
	_, err := AddInfluencer(ds, schema.Influencer{Brand: "Zara"}, testNow)
	var verr *schema.ValidationError
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("AddInfluencer() = %v, want name validation error", err)
	}
	if len(ds.Influencers) != 3 {
		t.Error("invalid influencer was appended")
	}
}

func TestUpdateInfluencer_RenamePropagates(t *testing.T) {
	ds := seed(t)
	inf := ds.Influencers[0]
	created := inf.CreatedAt
	inf.Name = "Ayşe Yılmaz-Kara"
	inf.CollaborationCount = 99

	got, err := UpdateInfluencer(ds, inf)
	if err != nil {
		t.Fatalf("UpdateInfluencer() failed: %v", err)
	}
	if got.CollaborationCount != 3 {
		t.Errorf("CollaborationCount = %d, want 3 (preserved)", got.CollaborationCount)
	}
	if got.CreatedAt != created {
		t.Error("CreatedAt not preserved")
	}

	renamed := 0
	for _, c := range ds.Collaborations {
		if c.InfluencerName == "Ayşe Yılmaz-Kara" {
			renamed++
		}
	}
	if renamed != 3 {
		t.Errorf("renamed collaborations = %d, want 3", renamed)
	}
	assertConsistent(t, ds)
}

func TestUpdateInfluencer_NotFound(t *testing.T) {
	ds := seed(t)
	_, err := UpdateInfluencer(ds, schema.Influencer{ID: "nope", Name: "x", Brand: "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateInfluencer() = %v, want ErrNotFound", err)
	}
}

func TestDeleteInfluencer_Cascades(t *testing.T) {
	ds := seed(t)
	removed, err := DeleteInfluencer(ds, "1")
	if err != nil {
		t.Fatalf("DeleteInfluencer() failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if len(ds.Influencers) != 2 || len(ds.Collaborations) != 2 {
		t.Errorf("left %d influencers, %d collaborations", len(ds.Influencers), len(ds.Collaborations))
	}
	for _, c := range ds.Collaborations {
		if c.InfluencerID == "1" {
			t.Errorf("collaboration %s still references deleted influencer", c.ID)
		}
	}
	assertConsistent(t, ds)

	if _, err := DeleteInfluencer(ds, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestAddCollaboration_Increments(t *testing.T) {
	ds := seed(t)
	c, err := AddCollaboration(ds, newCollab("2"), schema.DefaultTeam, testNow)
	if err != nil {
		t.Fatalf("AddCollaboration() failed: %v", err)
	}
	if c.InfluencerName != "Mehmet Demir" {
		t.Errorf("InfluencerName = %q", c.InfluencerName)
	}
	if got := countOf(t, ds, "2"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	assertConsistent(t, ds)
}

func TestAddCollaboration_Unlinked(t *testing.T) {
	ds := seed(t)
	c := newCollab("")
	c.InfluencerName = "Walk-in"
	got, err := AddCollaboration(ds, c, schema.DefaultTeam, testNow)
	if err != nil {
		t.Fatalf("AddCollaboration() failed: %v", err)
	}
	if got.InfluencerName != "Walk-in" {
		t.Errorf("InfluencerName = %q, want free text kept", got.InfluencerName)
	}
	assertConsistent(t, ds)
}

func TestAddCollaboration_UnknownInfluencer(t *testing.T) {
	ds := seed(t)
	before := len(ds.Collaborations)
	_, err := AddCollaboration(ds, newCollab("ghost"), schema.DefaultTeam, testNow)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddCollaboration() = %v, want ErrNotFound", err)
	}
	if len(ds.Collaborations) != before {
		t.Error("collaboration appended despite error")
	}
}

func TestAddCollaboration_InvalidAssignee(t *testing.T) {
	ds := seed(t)
	c := newCollab("2")
	c.AssignedTo = "Intern"
	if _, err := AddCollaboration(ds, c, schema.DefaultTeam, testNow); err == nil {
		t.Fatal("AddCollaboration() with unknown assignee should fail")
	}
	if got := countOf(t, ds, "2"); got != 1 {
		t.Errorf("count = %d, want 1 (unchanged)", got)
	}
}

func TestDeleteCollaboration_FloorsAtZero(t *testing.T) {
	ds := seed(t)
	// Force drift: influencer 3 claims zero but is referenced once.
	ds.Influencers[ds.Influencer("3")].CollaborationCount = 0

	if _, err := DeleteCollaboration(ds, "5"); err != nil {
		t.Fatalf("DeleteCollaboration() failed: %v", err)
	}
	if got := countOf(t, ds, "3"); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
	if _, err := DeleteCollaboration(ds, "5"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestUpdateCollaboration_MovesCount(t *testing.T) {
	ds := seed(t)
	c := ds.Collaborations[ds.Collaboration("4")]
	c.InfluencerID = "3"

	got, err := UpdateCollaboration(ds, c, schema.DefaultTeam)
	if err != nil {
		t.Fatalf("UpdateCollaboration() failed: %v", err)
	}
	if got.InfluencerName != "Zeynep Kaya" {
		t.Errorf("InfluencerName = %q", got.InfluencerName)
	}
	if countOf(t, ds, "2") != 0 || countOf(t, ds, "3") != 2 {
		t.Errorf("counts = %d,%d, want 0,2", countOf(t, ds, "2"), countOf(t, ds, "3"))
	}
	assertConsistent(t, ds)
}

func TestUpdateCollaboration_Unlink(t *testing.T) {
	ds := seed(t)
	c := ds.Collaborations[ds.Collaboration("5")]
	c.InfluencerID = ""

	got, err := UpdateCollaboration(ds, c, schema.DefaultTeam)
	if err != nil {
		t.Fatalf("UpdateCollaboration() failed: %v", err)
	}
	if got.InfluencerName != "" {
		t.Errorf("InfluencerName = %q, want cleared", got.InfluencerName)
	}
	if countOf(t, ds, "3") != 0 {
		t.Error("old influencer not decremented")
	}
	assertConsistent(t, ds)
}

func TestUpdateCollaboration_Errors(t *testing.T) {
	ds := seed(t)
	if _, err := UpdateCollaboration(ds, newCollab("1"), schema.DefaultTeam); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of unknown id = %v, want ErrNotFound", err)
	}

	c := ds.Collaborations[0]
	c.InfluencerID = "ghost"
	if _, err := UpdateCollaboration(ds, c, schema.DefaultTeam); !errors.Is(err, ErrNotFound) {
		t.Errorf("move to unknown influencer = %v, want ErrNotFound", err)
	}
	assertConsistent(t, ds)
}

// Adding then removing a job for an influencer returns the count to where
// it started.
func TestCountRoundTrip(t *testing.T) {
	ds := &syncsvc.Dataset{}
	inf, _ := AddInfluencer(ds, schema.Influencer{Name: "Ayşe", Brand: "Nike"}, testNow)
	for i := 0; i < 2; i++ {
		if _, err := AddCollaboration(ds, newCollab(inf.ID), schema.DefaultTeam, testNow); err != nil {
			t.Fatalf("AddCollaboration() failed: %v", err)
		}
	}
	if got := countOf(t, ds, inf.ID); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}

	c, _ := AddCollaboration(ds, newCollab(inf.ID), schema.DefaultTeam, testNow)
	if got := countOf(t, ds, inf.ID); got != 3 {
		t.Errorf("count after add = %d, want 3", got)
	}
	if _, err := DeleteCollaboration(ds, c.ID); err != nil {
		t.Fatalf("DeleteCollaboration() failed: %v", err)
	}
	if got := countOf(t, ds, inf.ID); got != 2 {
		t.Errorf("count after delete = %d, want 2", got)
	}
	assertConsistent(t, ds)
}

func TestImportInfluencers_AppendOnly(t *testing.T) {
	ds := seed(t)
	original := ds.Influencers[0]

	rows := []schema.Influencer{
		{Name: "Ayşe Yılmaz", Brand: "Other", CollaborationCount: 5},
		{Name: "Can", Brand: "LCW"},
	}
	added, err := ImportInfluencers(ds, rows, testNow)
	if err != nil {
		t.Fatalf("ImportInfluencers() failed: %v", err)
	}
	if len(added) != 2 || len(ds.Influencers) != 5 {
		t.Fatalf("added %d, total %d", len(added), len(ds.Influencers))
	}
	if ds.Influencers[0] != original {
		t.Error("existing influencer was modified")
	}
	if added[0].ID == original.ID || added[0].CollaborationCount != 0 {
		t.Errorf("imported row = %+v, want fresh id and zero count", added[0])
	}
	assertConsistent(t, ds)
}

func TestImportInfluencers_RowError(t *testing.T) {
	ds := seed(t)
	rows := []schema.Influencer{
		{Name: "Ok", Brand: "B"},
		{Name: "", Brand: "B"},
	}
	_, err := ImportInfluencers(ds, rows, testNow)

	var rerr *schema.RowError
	if !errors.As(err, &rerr) || rerr.Row != 2 {
		t.Fatalf("ImportInfluencers() = %v, want row 2 error", err)
	}
	if len(ds.Influencers) != 3 {
		t.Error("partial import was appended")
	}
}

func TestReconcile(t *testing.T) {
	ds := seed(t)
	if Reconcile(ds) {
		t.Error("Reconcile() on consistent seed reported a change")
	}

	ds.Influencers[0].CollaborationCount = 12
	ds.Collaborations[0].InfluencerName = "stale"
	if !Reconcile(ds) {
		t.Fatal("Reconcile() did not report drift")
	}
	assertConsistent(t, ds)
}

func TestSummarize(t *testing.T) {
	ds := seed(t)
	s := Summarize(ds, schema.DefaultTeam)

	if s.Influencers != 3 || s.Collaborations != 5 || s.ActiveInfluencers != 3 {
		t.Errorf("totals = %+v", s)
	}
	if s.ByStatus[schema.StatusCompleted] != 3 || s.ByStatus[schema.StatusApproved] != 1 || s.ByStatus[schema.StatusPending] != 1 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
	if s.TotalFee != 19600 {
		t.Errorf("TotalFee = %v, want 19600", s.TotalFee)
	}
	if s.CompletedFee != 13300 {
		t.Errorf("CompletedFee = %v, want 13300", s.CompletedFee)
	}
	if len(s.Members) != 3 || s.Members[1].Member != "CAN AYDIN" || s.Members[1].Jobs != 2 {
		t.Errorf("Members = %+v", s.Members)
	}
}
