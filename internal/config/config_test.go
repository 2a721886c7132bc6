package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amanksolutions/galleryguard/internal/constants"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  environment: testing
  name: galleryguard
server:
  port: 9191
session:
  ttl: 1h
  max_requests: 100
gallery:
  root: /srv/galleries
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.App.Environment != "testing" {
		t.Errorf("Expected App.Environment = testing, got %s", config.App.Environment)
	}
	if config.Server.Port != 9191 {
		t.Errorf("Expected Server.Port = 9191, got %d", config.Server.Port)
	}
	if config.Session.TTL != time.Hour {
		t.Errorf("Expected Session.TTL = 1h, got %v", config.Session.TTL)
	}
	if config.Session.MaxRequests != 100 {
		t.Errorf("Expected Session.MaxRequests = 100, got %d", config.Session.MaxRequests)
	}
	if config.Gallery.Root != "/srv/galleries" {
		t.Errorf("Expected Gallery.Root = /srv/galleries, got %s", config.Gallery.Root)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.App.Environment != constants.EnvDevelopment {
		t.Errorf("Expected default environment, got %s", config.App.Environment)
	}
	if config.Server.Port != constants.DefaultServerPort {
		t.Errorf("Expected default port, got %d", config.Server.Port)
	}
	if config.Session.TTL != constants.DefaultSessionTTL {
		t.Errorf("Expected default session TTL, got %v", config.Session.TTL)
	}
	if config.Session.MaxRequests != constants.DefaultSessionMaxRequests {
		t.Errorf("Expected default max requests, got %d", config.Session.MaxRequests)
	}
	if config.Session.RateLimit != constants.DefaultSessionRateLimit {
		t.Errorf("Expected default rate limit, got %d", config.Session.RateLimit)
	}
	if config.Watermark.Text != constants.DefaultWatermarkText {
		t.Errorf("Expected default watermark text, got %s", config.Watermark.Text)
	}
	if config.ManagerAuth.Expiry != constants.DefaultManagerTokenExpiry {
		t.Errorf("Expected default manager token expiry, got %v", config.ManagerAuth.Expiry)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9191
`)

	os.Setenv("SERVER_PORT", "7070")
	defer os.Unsetenv("SERVER_PORT")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Server.Port != 7070 {
		t.Errorf("Expected env override port 7070, got %d", config.Server.Port)
	}
}

func TestLoadInvalidEnvironmentDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  environment: staging
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.App.Environment != constants.EnvDevelopment {
		t.Errorf("Expected invalid environment to default to development, got %s", config.App.Environment)
	}
}

func TestLoadProductionRequiresManagerSecret(t *testing.T) {
	path := writeConfigFile(t, `
app:
  environment: production
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for missing manager secret in production")
	}

	path = writeConfigFile(t, `
app:
  environment: production
manager_auth:
  secret: a-real-secret
`)

	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: verbose
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid log level")
	}
}

func TestSettingsHelpers(t *testing.T) {
	ss := &ServerSettings{Host: "0.0.0.0", Port: 8080}
	if ss.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Unexpected server address %s", ss.ServerAddress())
	}

	rs := &RedisSettings{}
	if !rs.UseInMemoryCache() {
		t.Error("Expected empty Redis addr to select in-memory cache")
	}
	rs.Addr = "localhost:6379"
	if rs.UseInMemoryCache() {
		t.Error("Expected Redis addr to disable in-memory cache")
	}

	ms := &MailSettings{}
	if ms.MailEnabled() {
		t.Error("Expected mail disabled without API key")
	}
	ms.APIKey = "SG.test"
	ms.ToAddress = "owner@example.com"
	if !ms.MailEnabled() {
		t.Error("Expected mail enabled with API key and recipient")
	}

	as := &AppSettings{Environment: "Production"}
	if !as.IsProduction() || as.IsDevelopment() || as.IsTesting() {
		t.Error("Environment predicates mismatched for production")
	}
}
