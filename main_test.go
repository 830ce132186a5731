package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("a missing file should be ignored, got %v", err)
	}

	good := filepath.Join(dir, "good.env")
	if err := os.WriteFile(good, []byte("GEOFENCE_DOTENV_TEST=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GEOFENCE_DOTENV_TEST") })
	if err := loadDotEnv(good); err != nil {
		t.Fatal("unexpected error", err)
	}
	if v := os.Getenv("GEOFENCE_DOTENV_TEST"); v != "1" {
		t.Errorf("expected GEOFENCE_DOTENV_TEST=1, got %q", v)
	}

	bad := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(bad, []byte("GEOFENCE_POLYGON=\"0,0 0,10\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(bad); err == nil {
		t.Error("expected an error for an unterminated quoted value")
	}
}
