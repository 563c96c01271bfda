package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Folders.Output != "output" || cfg.Folders.ValFiles != "val_files" {
		t.Errorf("unexpected folder defaults: %+v", cfg.Folders)
	}
	if cfg.Inputs.CommandFile != "input_cmds.yml" || cfg.Inputs.IndexFile != "input_index.yml" {
		t.Errorf("unexpected input defaults: %+v", cfg.Inputs)
	}
	if cfg.Device.Username != "admin" {
		t.Errorf("unexpected username default: %q", cfg.Device.Username)
	}
	if cfg.Store.Backend != "fs" {
		t.Errorf("unexpected store default: %q", cfg.Store.Backend)
	}
	if cfg.Diff.SimilarityThreshold != 0.5 {
		t.Errorf("unexpected threshold default: %v", cfg.Diff.SimilarityThreshold)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prepost.yml")
	data := `
base_directory: /srv/changes
device:
  username: netops
store:
  backend: sqlite
  path: /srv/changes/snapshots.db
diff:
  similarity_threshold: 0.7
`
	os.WriteFile(path, []byte(data), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseDirectory != "/srv/changes" {
		t.Errorf("base directory: %q", cfg.BaseDirectory)
	}
	if cfg.Device.Username != "netops" {
		t.Errorf("username: %q", cfg.Device.Username)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "/srv/changes/snapshots.db" {
		t.Errorf("store: %+v", cfg.Store)
	}
	if cfg.Diff.SimilarityThreshold != 0.7 {
		t.Errorf("threshold: %v", cfg.Diff.SimilarityThreshold)
	}
	// Defaults still fill unset sections.
	if cfg.Folders.Output != "output" {
		t.Errorf("output folder: %q", cfg.Folders.Output)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prepost.yml")
	os.WriteFile(path, []byte("device:\n  username: fromfile\n"), 0644)
	t.Setenv(EnvDeviceUser, "fromenv")
	t.Setenv(EnvBaseDirectory, "/env/base")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Device.Username != "fromenv" {
		t.Errorf("expected env to win, got %q", cfg.Device.Username)
	}
	if cfg.BaseDirectory != "/env/base" {
		t.Errorf("expected env base directory, got %q", cfg.BaseDirectory)
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prepost.yml")
	os.WriteFile(path, []byte("store:\n  backend: redis\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateSqliteRequiresPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prepost.yml")
	os.WriteFile(path, []byte("store:\n  backend: sqlite\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for sqlite without path")
	}
}

func TestValidateRejectsOutOfRangeThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prepost.yml")
	os.WriteFile(path, []byte("diff:\n  similarity_threshold: 1.5\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestChangeDirResolution(t *testing.T) {
	cfg := &Config{BaseDirectory: "/srv/changes"}

	if got := cfg.ChangeDir("CHG0012345"); got != "/srv/changes/CHG0012345" {
		t.Errorf("relative change dir: %q", got)
	}
	if got := cfg.ChangeDir("/abs/CHG0012345"); got != "/abs/CHG0012345" {
		t.Errorf("absolute change dir: %q", got)
	}
}
