package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := writeConfig(t, `
db:
  driver: postgres
  dsn: postgres://bms@localhost/bms
auth:
  jwt_secret: s3cret
api:
  device_log_limit: 25
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "postgres://bms@localhost/bms" {
		t.Fatalf("unexpected db config: %+v", cfg.Database)
	}
	if cfg.API.DeviceLogLimit != 25 {
		t.Fatalf("device_log_limit: got %d, want 25", cfg.API.DeviceLogLimit)
	}
	// untouched keys keep their defaults
	if cfg.API.NotificationLimit != 50 || cfg.API.HistoryWindowHours != 24 {
		t.Fatalf("defaults not applied: %+v", cfg.API)
	}
	if cfg.API.OnlineVoltageThreshold != 10 {
		t.Fatalf("online threshold: got %v", cfg.API.OnlineVoltageThreshold)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl: got %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Access.EnforceDeviceScope {
		t.Fatal("expected device scope enforcement on by default")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "auth:\n  jwt_secret: from-file\n")
	t.Setenv("BMS_AUTH_JWT_SECRET", "from-env")
	t.Setenv("BMS_SERVER_PORT", "9090")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("jwt secret: got %q, want from-env", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port: got %q, want 9090", cfg.Server.Port)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing secret", "db:\n  driver: sqlite\n"},
		{"bad driver", "db:\n  driver: mysql\nauth:\n  jwt_secret: x\n"},
		{"bad window", "auth:\n  jwt_secret: x\napi:\n  history_window_hours: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestAPIConfig_Location(t *testing.T) {
	loc, err := APIConfig{}.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("empty timezone: got %v, %v", loc, err)
	}
	loc, err = APIConfig{Timezone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("UTC timezone: got %v, %v", loc, err)
	}
	if _, err := (APIConfig{Timezone: "Nowhere/Land"}).Location(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
