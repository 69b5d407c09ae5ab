package syncconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// withTestHome points HOME at a temp dir so config reads and writes
// never touch the real ~/.config/qn.
func withTestHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	os.Unsetenv("QN_SYNC_URL")
	os.Unsetenv("QN_AUTH_KEY")
	os.Unsetenv("QN_SYNC")
	os.Unsetenv("QN_SYNC_AUTO")
	return tmpDir
}

func writeTestConfig(t *testing.T, home string, cfg *Config) {
	t.Helper()
	dir := filepath.Join(home, ".config", "qn")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestServerURLDefault(t *testing.T) {
	withTestHome(t)
	if got := GetServerURL(); got != defaultServerURL {
		t.Fatalf("url = %q, want default %q", got, defaultServerURL)
	}
}

func TestServerURLFromConfig(t *testing.T) {
	home := withTestHome(t)
	writeTestConfig(t, home, &Config{Sync: SyncConfig{URL: "https://sync.example.com"}})
	if got := GetServerURL(); got != "https://sync.example.com" {
		t.Fatalf("url = %q", got)
	}
}

func TestServerURLEnvOverridesConfig(t *testing.T) {
	home := withTestHome(t)
	writeTestConfig(t, home, &Config{Sync: SyncConfig{URL: "https://file.example.com"}})
	t.Setenv("QN_SYNC_URL", "https://env.example.com")
	if got := GetServerURL(); got != "https://env.example.com" {
		t.Fatalf("url = %q, want env value", got)
	}
}

func TestAuthRoundTrip(t *testing.T) {
	home := withTestHome(t)

	creds := &AuthCredentials{AuthKey: "k-123", ServerURL: "https://s.example.com", DeviceID: "dev-1"}
	if err := SaveAuth(creds); err != nil {
		t.Fatalf("save auth: %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".config", "qn", "auth.json"))
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("auth.json perms = %o, want 0600", perm)
	}

	got, err := LoadAuth()
	if err != nil {
		t.Fatalf("load auth: %v", err)
	}
	if got == nil || got.AuthKey != "k-123" || got.DeviceID != "dev-1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := ClearAuth(); err != nil {
		t.Fatalf("clear auth: %v", err)
	}
	got, err = LoadAuth()
	if err != nil || got != nil {
		t.Fatalf("auth present after clear: %+v, %v", got, err)
	}
	// Clearing again is fine.
	if err := ClearAuth(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestGetAuthKeyEnvOverride(t *testing.T) {
	withTestHome(t)
	if err := SaveAuth(&AuthCredentials{AuthKey: "file-key"}); err != nil {
		t.Fatalf("save auth: %v", err)
	}
	t.Setenv("QN_AUTH_KEY", "env-key")
	if got := GetAuthKey(); got != "env-key" {
		t.Fatalf("auth key = %q, want env value", got)
	}
}

func TestDeviceIDGeneratedOnceAndPersisted(t *testing.T) {
	withTestHome(t)

	first, err := GetDeviceID()
	if err != nil {
		t.Fatalf("get device id: %v", err)
	}
	if len(first) != 32 {
		t.Fatalf("device id %q: want 32 hex chars", first)
	}

	second, err := GetDeviceID()
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second != first {
		t.Fatalf("device id not stable: %q vs %q", first, second)
	}
}

func TestSyncEnabled(t *testing.T) {
	home := withTestHome(t)
	if SyncEnabled() {
		t.Fatal("sync enabled with no config")
	}

	writeTestConfig(t, home, &Config{Sync: SyncConfig{Enabled: true}})
	if !SyncEnabled() {
		t.Fatal("sync disabled despite config")
	}

	t.Setenv("QN_SYNC", "0")
	if SyncEnabled() {
		t.Fatal("env override ignored")
	}
}

func TestAutoSyncDefaultTrue(t *testing.T) {
	withTestHome(t)
	if !AutoSyncEnabled() {
		t.Fatal("auto sync should default to true")
	}
	t.Setenv("QN_SYNC_AUTO", "false")
	if AutoSyncEnabled() {
		t.Fatal("env override ignored")
	}
}
