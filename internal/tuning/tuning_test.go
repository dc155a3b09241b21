package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %s", dir)
		}
		dir = parent
	}
}

func TestLoadRepoTuning(t *testing.T) {
	tn, err := Load(filepath.Join(findRepoRoot(t), "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.ProtocolVersion != "1.0" {
		t.Fatalf("unexpected protocol version %q", tn.ProtocolVersion)
	}
	if tn.Policy.SoulShrinkingTechnique != "none" {
		t.Fatalf("unexpected technique %q", tn.Policy.SoulShrinkingTechnique)
	}
	if tn.Notifications.MaxPerCapture != 1 {
		t.Fatalf("unexpected notification cap %d", tn.Notifications.MaxPerCapture)
	}
}

func TestLoadRejectsUnknownTechnique(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "policy:\n  soul_shrinking_technique: vaporize\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown technique")
	}
}

func TestLoadDefaultsNotificationCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "protocol_version: \"1.0\"\npolicy:\n  allow_soul_relocation: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Notifications.MaxPerCapture != 1 {
		t.Fatalf("missing cap should default to 1, got %d", tn.Notifications.MaxPerCapture)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.ProtocolVersion == "" || d.Notifications.MaxPerCapture != 1 {
		t.Fatalf("unexpected defaults %+v", d)
	}
	if !d.Policy.AllowSoulRelocation || d.Policy.SoulShrinkingTechnique != "none" {
		t.Fatalf("unexpected default policy %+v", d.Policy)
	}
}
