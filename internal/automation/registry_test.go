package automation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automations.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
[[automations]]
id = "nightly-report"
enabled = true
  [automations.schedule]
  type = "daily"
  hour = 2

[[automations]]
id = "weekly-cleanup"
enabled = false
  [automations.schedule]
  type = "weekly"
  day = "sunday"
  hour = 4
`)

	got, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 automations, got %d", len(got))
	}
	if got[0].ID != "nightly-report" || !got[0].Enabled {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
	if got[0].Schedule.Type != ScheduleDaily || got[0].Schedule.Hour != 2 {
		t.Errorf("unexpected schedule: %+v", got[0].Schedule)
	}
	if got[1].Schedule.Day != "sunday" {
		t.Errorf("expected day sunday, got %v", got[1].Schedule.Day)
	}
}

func TestLoadRegistry_NumericDay(t *testing.T) {
	path := writeRegistry(t, `
[[automations]]
id = "sunday-job"
enabled = true
  [automations.schedule]
  type = "weekly"
  day = 0
`)

	got, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	day, ok := parseWeekday(got[0].Schedule.Day)
	if !ok || day.String() != "Sunday" {
		t.Errorf("expected numeric day 0 to parse as Sunday, got %v (ok=%v)", day, ok)
	}
}

func TestLoadRegistry_Missing(t *testing.T) {
	got, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected empty registry, got %v", got)
	}
}

func TestLoadRegistry_MissingID(t *testing.T) {
	path := writeRegistry(t, `
[[automations]]
enabled = true
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("expected error for entry without id")
	}
}
