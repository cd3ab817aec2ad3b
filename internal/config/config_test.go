package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":5000" {
		t.Errorf("HTTPAddr = %q, want :5000", cfg.HTTPAddr)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.SlotCount != 4 {
		t.Errorf("SlotCount = %d, want 4", cfg.SlotCount)
	}
	if cfg.GraceMinutes != 15 || cfg.RatePerMinute != 100 {
		t.Errorf("fee defaults = %d min / %d, want 15 / 100", cfg.GraceMinutes, cfg.RatePerMinute)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PARKSMART_HTTP_ADDR", ":8080")
	t.Setenv("PARKSMART_ENV", "PROD")
	t.Setenv("PARKSMART_SLOT_COUNT", "12")
	t.Setenv("PARKSMART_ENTRY_CAMERA_ADDR", "192.168.1.20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Env != "prod" {
		t.Errorf("Env = %q, want lowercased prod", cfg.Env)
	}
	if cfg.SlotCount != 12 {
		t.Errorf("SlotCount = %d, want 12", cfg.SlotCount)
	}
	if cfg.EntryCameraAddr != "192.168.1.20" {
		t.Errorf("EntryCameraAddr = %q", cfg.EntryCameraAddr)
	}
}

func TestLoad_UnknownEnvFallsBackToDev(t *testing.T) {
	t.Setenv("PARKSMART_ENV", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev fallback", cfg.Env)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("PARKSMART_SLOT_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero slot count")
	}
}

func TestLoad_NegativeRateRejected(t *testing.T) {
	t.Setenv("PARKSMART_RATE_PER_MINUTE", "-5")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative rate")
	}
}
