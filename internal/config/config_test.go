package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Driver != "badger" {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, "badger")
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want loopback", cfg.Host)
	}
	if cfg.StreakCheckInterval != time.Hour {
		t.Errorf("StreakCheckInterval = %v, want 1h", cfg.StreakCheckInterval)
	}
	if cfg.TMDB.Timeout != 15*time.Second {
		t.Errorf("TMDB.Timeout = %v, want 15s", cfg.TMDB.Timeout)
	}
	if !cfg.CatalogCacheEnabled {
		t.Error("CatalogCacheEnabled = false, want true")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		driver string
	}{
		{"missing api key", "", "badger"},
		{"unknown driver", "key", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMDB_API_KEY", tt.apiKey)
			t.Setenv("STORE_DRIVER", tt.driver)

			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.SSLRootCert = "/ca.pem"
	if got := d.DSN(); got != want+" sslrootcert=/ca.pem" {
		t.Errorf("DSN() with cert = %q", got)
	}
}
