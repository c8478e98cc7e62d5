package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	os.Unsetenv(EnvPort)
	os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.DataDir() == "" {
		t.Error("DataDir should never be empty")
	}
}

func TestPortFromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9000")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port())
	}
}

func TestPortInvalid(t *testing.T) {
	for _, bad := range []string{"abc", "0", "70000"} {
		os.Setenv(EnvPort, bad)
		if _, err := New(); err == nil {
			t.Errorf("expected error for port %q", bad)
		}
	}
	os.Unsetenv(EnvPort)
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	os.Setenv(EnvDataDir, dir)
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatal(err)
	}

	// missing file yields zero-value settings
	s, err := cfg.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings on empty dir: %v", err)
	}
	if s.LastProjectPath != "" {
		t.Errorf("expected empty settings, got %+v", s)
	}

	s.LastProjectPath = "/projects/demo"
	s.SrtFolders = []string{"/srt/a", "/srt/b"}
	if err := cfg.SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := cfg.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded.LastProjectPath != "/projects/demo" || len(loaded.SrtFolders) != 2 {
		t.Errorf("settings not persisted: %+v", loaded)
	}
}
