package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Elastic:  ElasticConfig{Addrs: []string{"http://localhost:9200"}},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingElasticAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Elastic.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing elastic addrs")
	}
}

func TestValidate_InvalidDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	expected := `database.driver must be "redis" or "valkey", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidDrivers(t *testing.T) {
	for _, driver := range []string{"redis", "valkey"} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = driver
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid driver %q: %v", driver, err)
			}
		})
	}
}

func TestValidate_NonPositivePrincipalID(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Tokens = map[string]PrincipalConfig{
		"secret-token": {ID: 0, Name: "alice"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive principal id")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %s", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Elastic.ContentIndex != "gif_index" {
		t.Errorf("expected ContentIndex=gif_index, got %s", cfg.Elastic.ContentIndex)
	}
	if cfg.Elastic.LogIndex != "message_index" {
		t.Errorf("expected LogIndex=message_index, got %s", cfg.Elastic.LogIndex)
	}
	if cfg.Search.CacheTTLSec != 86400 {
		t.Errorf("expected CacheTTLSec=86400, got %d", cfg.Search.CacheTTLSec)
	}
	if cfg.Search.CacheMaxEntries != 200 {
		t.Errorf("expected CacheMaxEntries=200, got %d", cfg.Search.CacheMaxEntries)
	}
	if cfg.Search.PageSize != 20 {
		t.Errorf("expected PageSize=20, got %d", cfg.Search.PageSize)
	}
	if cfg.Search.HistoryPageSize != 10 {
		t.Errorf("expected HistoryPageSize=10, got %d", cfg.Search.HistoryPageSize)
	}
	if cfg.Search.MaxHistory != 200 {
		t.Errorf("expected MaxHistory=200, got %d", cfg.Search.MaxHistory)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{Search: SearchConfig{CacheTTLSec: 3, CacheMaxEntries: 10}}
	cfg.ApplyDefaults()

	if cfg.Search.CacheTTLSec != 3 {
		t.Errorf("expected CacheTTLSec=3, got %d", cfg.Search.CacheTTLSec)
	}
	if cfg.Search.CacheMaxEntries != 10 {
		t.Errorf("expected CacheMaxEntries=10, got %d", cfg.Search.CacheMaxEntries)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GIFSEARCH_TEST_PASSWORD", "s3cret")

	in := []byte("password: ${GIFSEARCH_TEST_PASSWORD}\nindex: ${GIFSEARCH_TEST_MISSING:-gif_index}\n")
	out := string(expandEnvVars(in))

	want := "password: s3cret\nindex: gif_index\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("expected local default, got %s", env)
	}

	os.Setenv("ENV", "prod")
	defer os.Unsetenv("ENV")
	if env := GetEnv(); env != "prod" {
		t.Errorf("expected prod, got %s", env)
	}
}
