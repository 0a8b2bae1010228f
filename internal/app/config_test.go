package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "STORE_DRIVER", "TIMER_UNIT", "CORS_ALLOW", "WS_SEND_BUFFER"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.Env != "dev" {
		t.Errorf("expected env dev, got %q", cfg.Env)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("expected memory store, got %q", cfg.StoreDriver)
	}
	if cfg.TimerUnit != time.Minute {
		t.Errorf("expected 1m timer unit, got %s", cfg.TimerUnit)
	}
	if cfg.WSSendBuffer != 64 {
		t.Errorf("expected send buffer 64, got %d", cfg.WSSendBuffer)
	}
	if len(cfg.CORSAllow) != 1 || cfg.CORSAllow[0] != "*" {
		t.Errorf("unexpected CORS allowlist %v", cfg.CORSAllow)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("TIMER_UNIT", "2s")
	t.Setenv("PG_MAX_CONN", "nope")
	t.Setenv("CORS_ALLOW", " http://a.test , ,http://b.test")

	cfg := LoadConfig()
	if cfg.StoreDriver != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.StoreDriver)
	}
	if cfg.TimerUnit != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.TimerUnit)
	}
	if cfg.PGMaxConn != 10 {
		t.Errorf("invalid int should fall back to 10, got %d", cfg.PGMaxConn)
	}
	if len(cfg.CORSAllow) != 2 || cfg.CORSAllow[1] != "http://b.test" {
		t.Errorf("unexpected CORS allowlist %v", cfg.CORSAllow)
	}
}
