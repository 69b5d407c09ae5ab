// Package syncconfig manages global qn configuration under
// ~/.config/qn/: sync settings in config.json and credentials in
// auth.json. Environment variables override file values.
package syncconfig

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SyncConfig holds sync-related settings.
type SyncConfig struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
	Auto    *bool  `json:"auto,omitempty"` // nil = default true
}

// Config is the global qn config stored at ~/.config/qn/config.json.
type Config struct {
	Sync SyncConfig `json:"sync"`
}

// AuthCredentials stores authentication state at ~/.config/qn/auth.json.
type AuthCredentials struct {
	AuthKey   string `json:"auth_key"`
	ServerURL string `json:"server_url"`
	DeviceID  string `json:"device_id"`
}

const defaultServerURL = "http://localhost:8787"

// ConfigDir returns ~/.config/qn, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "qn")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// LoadConfig reads the global config from ~/.config/qn/config.json.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the global config to ~/.config/qn/config.json.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadAuth reads auth credentials from ~/.config/qn/auth.json.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes auth credentials to ~/.config/qn/auth.json (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "auth.json"), data, 0600)
}

// ClearAuth removes the auth.json file.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetServerURL returns the sync server URL.
// Priority: QN_SYNC_URL env > auth.json > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("QN_SYNC_URL"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil && creds.ServerURL != "" {
		return creds.ServerURL
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.URL != "" {
		return cfg.Sync.URL
	}
	return defaultServerURL
}

// GetAuthKey returns the auth key.
// Priority: QN_AUTH_KEY env > auth.json.
func GetAuthKey() string {
	if v := os.Getenv("QN_AUTH_KEY"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil {
		return creds.AuthKey
	}
	return ""
}

// SyncEnabled reports whether sync is configured and turned on.
// Priority: QN_SYNC env > config.json sync.enabled.
func SyncEnabled() bool {
	if v := parseBoolEnv("QN_SYNC"); v != nil {
		return *v
	}
	cfg, err := LoadConfig()
	if err != nil {
		return false
	}
	return cfg.Sync.Enabled
}

// AutoSyncEnabled reports whether background sync should run after
// mutations. Priority: QN_SYNC_AUTO env > config.json sync.auto > true.
func AutoSyncEnabled() bool {
	if v := parseBoolEnv("QN_SYNC_AUTO"); v != nil {
		return *v
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto != nil {
		return *cfg.Sync.Auto
	}
	return true
}

// GetDeviceID returns the device ID from auth.json, generating and
// persisting one on first use.
func GetDeviceID() (string, error) {
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}

	id, err := GenerateDeviceID()
	if err != nil {
		return "", err
	}
	if creds == nil {
		creds = &AuthCredentials{}
	}
	creds.DeviceID = id
	if err := SaveAuth(creds); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// GenerateDeviceID creates a new random device ID (16 bytes hex).
func GenerateDeviceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// parseBoolEnv returns nil if env not set, pointer to bool if set.
func parseBoolEnv(envKey string) *bool {
	v := strings.ToLower(os.Getenv(envKey))
	if v == "1" || v == "true" {
		b := true
		return &b
	}
	if v == "0" || v == "false" {
		b := false
		return &b
	}
	return nil
}
