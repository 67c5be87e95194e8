package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talentdesk/talentdesk/internal/schema"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("td %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func listInfluencers(t *testing.T, dir string) []schema.Influencer {
	t.Helper()
	var list []schema.Influencer
	if err := json.Unmarshal([]byte(mustRun(t, dir, "influencer", "list", "--json")), &list); err != nil {
		t.Fatalf("invalid JSON from list: %v", err)
	}
	return list
}

func find(list []schema.Influencer, name string) *schema.Influencer {
	for i := range list {
		if list[i].Name == name {
			return &list[i]
		}
	}
	return nil
}

func TestInitSeedsStore(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init")
	if !strings.Contains(out, "3 influencer(s), 5 collaboration(s)") {
		t.Errorf("init output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "talentdesk.toml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".talentdesk", "talentdesk.db")); err != nil {
		t.Errorf("store not created: %v", err)
	}

	// A second init keeps the data.
	mustRun(t, dir, "influencer", "add", "--name", "Deniz", "--brand", "Nike")
	out = mustRun(t, dir, "init")
	if !strings.Contains(out, "4 influencer(s)") {
		t.Errorf("second init output = %q", out)
	}
}

func TestRosterWorkflow(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	mustRun(t, dir, "influencer", "add", "--name", "Deniz Ak", "--brand", "Nike", "--fee", "2000", "--category", "spor")
	mustRun(t, dir, "collab", "add", "--brand", "Nike", "--influencer", "deniz ak",
		"--fee", "1000", "--assigned", "CAN AYDIN", "--date", "15.01.2024")

	deniz := find(listInfluencers(t, dir), "Deniz Ak")
	if deniz == nil {
		t.Fatal("Deniz Ak not listed")
	}
	if deniz.CollaborationCount != 1 || deniz.Category != schema.CategorySports {
		t.Errorf("Deniz Ak = %+v", deniz)
	}

	var jobs []schema.Collaboration
	out := mustRun(t, dir, "collab", "list", "--influencer", deniz.ID, "--json")
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Date != "2024-01-15" || jobs[0].InfluencerName != "Deniz Ak" {
		t.Fatalf("jobs = %+v", jobs)
	}

	mustRun(t, dir, "influencer", "edit", deniz.ID, "--name", "Deniz Akın")
	out = mustRun(t, dir, "collab", "list", "--influencer", deniz.ID, "--json")
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jobs[0].InfluencerName != "Deniz Akın" {
		t.Errorf("rename not propagated: %+v", jobs[0])
	}

	if _, err := run(t, dir, "collab", "rm", jobs[0].ID); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("rm without --yes = %v, want confirmation error", err)
	}
	mustRun(t, dir, "collab", "rm", jobs[0].ID, "--yes")
	if got := find(listInfluencers(t, dir), "Deniz Akın"); got == nil || got.CollaborationCount != 0 {
		t.Errorf("after collab rm = %+v", got)
	}

	out = mustRun(t, dir, "influencer", "rm", "Ayşe Yılmaz", "--yes")
	if !strings.Contains(out, "3 collaboration(s)") {
		t.Errorf("influencer rm output = %q", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	tests := [][]string{
		{"influencer", "add", "--name", "No Brand"},
		{"influencer", "add", "--name", "A", "--brand", "B", "--status", "cancelled"},
		{"collab", "add", "--brand", "Nike", "--assigned", "SOMEONE ELSE"},
		{"collab", "add", "--brand", "Nike", "--assigned", "CAN AYDIN", "--influencer", "nobody"},
	}
	for _, args := range tests {
		if _, err := run(t, dir, args...); err == nil {
			t.Errorf("td %s succeeded, want error", strings.Join(args, " "))
		}
	}
	if n := len(listInfluencers(t, dir)); n != 3 {
		t.Errorf("influencers = %d after rejected adds, want 3", n)
	}
}

func TestTemplateImportExport(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	mustRun(t, dir, "template")

	tmpl := filepath.Join(dir, "influencer-sablonu.xlsx")
	out := mustRun(t, dir, "import", tmpl, "--dry-run")
	if !strings.Contains(out, "2 valid row(s)") {
		t.Errorf("dry run output = %q", out)
	}
	if n := len(listInfluencers(t, dir)); n != 3 {
		t.Errorf("dry run saved rows: %d influencers", n)
	}

	mustRun(t, dir, "import", tmpl, "--yes")
	if n := len(listInfluencers(t, dir)); n != 5 {
		t.Errorf("influencers after import = %d, want 5", n)
	}

	backup := filepath.Join(dir, "backup.jsonl")
	mustRun(t, dir, "export", "--collection", "influencers", "--out", backup)
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 5 {
		t.Errorf("backup has %d lines, want 5", n)
	}

	out = mustRun(t, dir, "export", "--assigned", "CAN AYDIN")
	if !strings.Contains(out, "Wrote 2 collaborations") {
		t.Errorf("export output = %q", out)
	}
}

func TestStatusAndReconcile(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	var status struct {
		Driver   string              `json:"driver"`
		Metadata schema.SyncMetadata `json:"metadata"`
		Summary  struct {
			Influencers int     `json:"influencers"`
			TotalFee    float64 `json:"total_fee"`
		} `json:"summary"`
	}
	out := mustRun(t, dir, "status", "--json")
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if status.Driver != "sqlite" || status.Metadata.DeviceID == "" || status.Metadata.LastSync == 0 {
		t.Errorf("status = %+v", status)
	}
	if status.Summary.Influencers != 3 || status.Summary.TotalFee != 19600 {
		t.Errorf("summary = %+v", status.Summary)
	}

	out = mustRun(t, dir, "status")
	for _, want := range []string{"Last sync:", "CAN AYDIN", "₺19.600,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "reconcile")
	if !strings.Contains(out, "consistent") {
		t.Errorf("reconcile output = %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "config", "init")
	if _, err := run(t, dir, "config", "init"); err == nil {
		t.Error("config init overwrote without --force")
	}
	mustRun(t, dir, "config", "init", "--force")

	t.Setenv("TD_DASHBOARD_PORT", "9300")
	out := mustRun(t, dir, "config", "show")
	if !strings.Contains(out, "dashboard.port    9300") {
		t.Errorf("config show = %q", out)
	}
}

func TestResolveInfluencer(t *testing.T) {
	list := []schema.Influencer{
		{ID: "0190a1b2-0000-7000-8000-aaaaaaaaaaaa", Name: "İpek"},
		{ID: "0190a1b2-0000-7000-8000-bbbbbbbbbbbb", Name: "Ipek"},
	}
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"0190a1b2-0000-7000-8000-aaaaaaaaaaaa", "İpek", false},
		{"bbbbbbbb", "Ipek", false},
		{"0190", "", true},
		{"ipek", "İpek", false},
		{"nobody", "", true},
	}
	for _, tt := range tests {
		got, err := resolveInfluencer(list, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveInfluencer(%q) error = %v", tt.ref, err)
			continue
		}
		if tt.want != "" && got.Name != tt.want {
			t.Errorf("resolveInfluencer(%q) = %q, want %q", tt.ref, got.Name, tt.want)
		}
	}
}
