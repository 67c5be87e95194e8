package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talentdesk/talentdesk/internal/schema"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.StorePath() != filepath.Join(dir, ".talentdesk", "talentdesk.db") {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
	if cfg.Sync.Interval != 30*time.Second || !cfg.Sync.Reconcile || !cfg.Sync.Watch {
		t.Errorf("Sync = %+v", cfg.Sync)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d", cfg.Dashboard.Port)
	}
	if len(cfg.TeamMembers()) != len(schema.DefaultTeam) {
		t.Errorf("TeamMembers() = %v", cfg.TeamMembers())
	}
	if cfg.LogFile() != "" {
		t.Errorf("LogFile() = %q, want empty", cfg.LogFile())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
[store]
driver = "bolt"
path = "data/roster.bolt"

[sync]
interval = "1m"
watch = false

[log]
file = "logs/td.log"

[team]
members = ["AYŞE", "MERT"]
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TD_DASHBOARD_PORT", "9100")
	t.Setenv("TD_SYNC_INTERVAL", "5s")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Store.Driver != "bolt" || cfg.StorePath() != filepath.Join(dir, "data", "roster.bolt") {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Sync.Interval != 5*time.Second {
		t.Errorf("Sync.Interval = %s, want env override 5s", cfg.Sync.Interval)
	}
	if cfg.Sync.Watch {
		t.Error("Sync.Watch should be false from file")
	}
	if !cfg.Sync.Reconcile {
		t.Error("Sync.Reconcile should keep its default")
	}
	if cfg.Dashboard.Port != 9100 {
		t.Errorf("Dashboard.Port = %d, want 9100", cfg.Dashboard.Port)
	}
	if cfg.LogFile() != filepath.Join(dir, "logs", "td.log") {
		t.Errorf("LogFile() = %q", cfg.LogFile())
	}
	if got := strings.Join(cfg.Team.Members, "|"); got != "AYŞE|MERT" {
		t.Errorf("Team.Members = %q", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TD_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TD_LOG_LEVEL") })

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from .env", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad driver", "[store]\ndriver = \"postgres\"\n"},
		{"negative interval", "[sync]\ninterval = \"-1s\"\n"},
		{"bad port", "[dashboard]\nport = 70000\n"},
		{"empty team", "[team]\nmembers = []\n"},
		{"syntax", "[store\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestTeamMembersFromEnv(t *testing.T) {
	t.Setenv("TD_TEAM_MEMBERS", "A, B ,C")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := strings.Join(cfg.Team.Members, "|"); got != "A|B|C" {
		t.Errorf("Team.Members = %q", got)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Store.Driver = "bolt"
	cfg.Sync.Interval = 2 * time.Minute
	cfg.Team.Members = []string{"ÖNCÜ EVRENSEL"}

	path := filepath.Join(dir, FileName)
	if err := WriteFile(path, cfg, false); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := WriteFile(path, cfg, false); err == nil {
		t.Error("WriteFile() overwrote without force")
	}
	if err := WriteFile(path, cfg, true); err != nil {
		t.Errorf("WriteFile(force) failed: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Store.Driver != "bolt" || got.Sync.Interval != 2*time.Minute {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.Team.Members) != 1 || got.Team.Members[0] != "ÖNCÜ EVRENSEL" {
		t.Errorf("Team.Members = %v", got.Team.Members)
	}
}
