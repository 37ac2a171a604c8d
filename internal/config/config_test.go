package config

import "testing"

func TestLoadWithoutOverridePathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseTickMS != 100 {
		t.Fatalf("expected default base_tick_ms 100, got %d", cfg.BaseTickMS)
	}
	if len(cfg.Species) != 2 {
		t.Fatalf("expected 2 default species, got %d", len(cfg.Species))
	}
	if cfg.ProfilerReportInterval != 50 {
		t.Fatalf("expected default profiler report interval 50, got %d", cfg.ProfilerReportInterval)
	}
}

func TestLoadFindsPredatorAndPreyDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawPredator, sawPrey bool
	for _, s := range cfg.Species {
		if s.IsPredator {
			sawPredator = true
			if len(s.PreyPreference) == 0 {
				t.Error("expected predator default to list prey preference")
			}
		} else {
			sawPrey = true
		}
	}
	if !sawPredator || !sawPrey {
		t.Fatal("expected both a predator and a prey species in defaults")
	}
}

func TestLoadMissingOverrideFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing override file")
	}
}

func TestLoadActionBudgetsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ActionBudgets.ReplanDrainPerTick != 10 {
		t.Fatalf("expected default replan drain budget 10, got %d", cfg.ActionBudgets.ReplanDrainPerTick)
	}
	if cfg.ActionBudgets.ActionPromotePerTick != 20 {
		t.Fatalf("expected default action promote budget 20, got %d", cfg.ActionBudgets.ActionPromotePerTick)
	}
}
