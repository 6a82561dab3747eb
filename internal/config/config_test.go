package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "3001")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("CART_STORAGE_KEY", "")
	t.Setenv("CATALOG_TIMEOUT_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CartStorageKey != DefaultCartStorageKey {
		t.Errorf("expected key %q, got %q", DefaultCartStorageKey, cfg.CartStorageKey)
	}
	if cfg.StorageDriver != StorageFile {
		t.Errorf("expected file driver, got %q", cfg.StorageDriver)
	}
	if cfg.CatalogTimeoutMs != DefaultCatalogTimeout {
		t.Errorf("expected timeout %d, got %d", DefaultCatalogTimeout, cfg.CatalogTimeoutMs)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing port",
			env:     map[string]string{"APP_PORT": ""},
			wantErr: "APP_PORT",
		},
		{
			name:    "mongo without uri",
			env:     map[string]string{"APP_PORT": "3001", "STORAGE_DRIVER": "mongo", "MONGO_URI": "", "MONGO_DB_NAME": "cart"},
			wantErr: "MONGO_URI",
		},
		{
			name:    "redis without addr",
			env:     map[string]string{"APP_PORT": "3001", "STORAGE_DRIVER": "redis", "REDIS_ADDR": ""},
			wantErr: "REDIS_ADDR",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"APP_PORT": "3001", "STORAGE_DRIVER": "sqlite"},
			wantErr: "unsupported STORAGE_DRIVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("APP_PORT", "3001")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("NOTIFICATION_BUFFER", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NotificationBuffer != DefaultNotifyBuffer {
		t.Fatalf("expected fallback %d, got %d", DefaultNotifyBuffer, cfg.NotificationBuffer)
	}
}

func TestStructAttrsUsesJSONKeys(t *testing.T) {
	cfg := &Config{AppPort: "3001", CatalogTimeoutMs: 1500, MongoURI: "mongodb://user:secret@db"}
	attrs := StructAttrs("data", cfg.ToSafeConfig())

	found := map[string]bool{}
	for _, a := range attrs {
		found[a.Key] = true
		if strings.Contains(a.Value.String(), "secret") {
			t.Fatalf("safe config leaked credentials in %s", a.Key)
		}
	}
	for _, key := range []string{"data.app_port", "data.catalog_timeout_ms", "data.cart_storage_key"} {
		if !found[key] {
			t.Errorf("expected attribute %s", key)
		}
	}
}
