package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("REDIS_DB", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr derived from port, got %q", cfg.ListenAddr)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected redis db 0 by default, got %d", cfg.RedisDB)
	}
}

func TestLoadReadsRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	if cfg := Load(); cfg.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.RedisDB)
	}

	t.Setenv("REDIS_DB", "not-a-number")
	if cfg := Load(); cfg.RedisDB != 0 {
		t.Fatalf("expected fallback to redis db 0, got %d", cfg.RedisDB)
	}
}
