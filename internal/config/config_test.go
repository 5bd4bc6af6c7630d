package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omenforge/omen/internal/smoothing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "smoothing.cfg")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSmoothingConfigAllThenOverride(t *testing.T) {
	path := writeConfig(t, "additive\n-delta_all 3\n-delta_CP 7\n")
	p, err := ParseSmoothingConfig(path)
	if err != nil {
		t.Fatalf("ParseSmoothingConfig: %v", err)
	}
	if p.Delta[smoothing.KindIP] != 3 {
		t.Errorf("IP delta = %d, want 3 (from the \"all\" line)", p.Delta[smoothing.KindIP])
	}
	if p.Delta[smoothing.KindCP] != 7 {
		t.Errorf("CP delta = %d, want 7 (target-specific override)", p.Delta[smoothing.KindCP])
	}
	if p.Delta[smoothing.KindEP] != 3 {
		t.Errorf("EP delta = %d, want 3 (untouched by the CP override)", p.Delta[smoothing.KindEP])
	}
}

func TestParseSmoothingConfigRejectsUnknownFamily(t *testing.T) {
	path := writeConfig(t, "multiplicative\n-delta_all 1\n")
	if _, err := ParseSmoothingConfig(path); err == nil {
		t.Fatal("expected an error for an unknown smoothing family")
	}
}

func TestParseSmoothingConfigRejectsMalformedLine(t *testing.T) {
	path := writeConfig(t, "additive\ndelta_all 1\n")
	if _, err := ParseSmoothingConfig(path); err == nil {
		t.Fatal("expected an error for a line missing its leading '-'")
	}
}

func TestLoadEnvDefaultsReadsProcessEnv(t *testing.T) {
	t.Setenv("OMEN_RESULTS_DIR", "/tmp/results")
	t.Setenv("OMEN_MAX_ATTEMPTS", "42")
	d := LoadEnvDefaults()
	if d.ResultsDir != "/tmp/results" {
		t.Errorf("ResultsDir = %q, want /tmp/results", d.ResultsDir)
	}
	if d.MaxAttempts != 42 {
		t.Errorf("MaxAttempts = %d, want 42", d.MaxAttempts)
	}
}

func TestLoadEnvDefaultsIgnoresGarbageMaxAttempts(t *testing.T) {
	t.Setenv("OMEN_MAX_ATTEMPTS", "not-a-number")
	d := LoadEnvDefaults()
	if d.MaxAttempts != 0 {
		t.Errorf("MaxAttempts = %d, want 0 (garbage value ignored)", d.MaxAttempts)
	}
}
