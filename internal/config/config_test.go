package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SamplingIntervalSeconds != 10 {
		t.Errorf("SamplingIntervalSeconds = %v, want 10", cfg.SamplingIntervalSeconds)
	}
	if cfg.OCRMode != OCRModeAccurate {
		t.Errorf("OCRMode = %q, want %q", cfg.OCRMode, OCRModeAccurate)
	}
	if cfg.PreambleTruncateChars != 200 {
		t.Errorf("PreambleTruncateChars = %d, want 200", cfg.PreambleTruncateChars)
	}
	if cfg.IgnoreIncognito {
		t.Error("IgnoreIncognito = true, want false by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{
		"sampling_interval_seconds": 30,
		"ocr_mode": "fast",
		"excluded_bundle_ids": ["com.1password.1password"],
		"excluded_title_keywords": ["banking", " banking ", ""],
		"ignore_incognito": true
	}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SamplingIntervalSeconds != 30 {
		t.Errorf("SamplingIntervalSeconds = %v, want 30", cfg.SamplingIntervalSeconds)
	}
	if cfg.OCRMode != OCRModeFast {
		t.Errorf("OCRMode = %q, want fast", cfg.OCRMode)
	}
	if !cfg.IgnoreIncognito {
		t.Error("IgnoreIncognito = false, want true")
	}
	// Unset scalar falls back to default
	if cfg.PreambleTruncateChars != 200 {
		t.Errorf("PreambleTruncateChars = %d, want default 200", cfg.PreambleTruncateChars)
	}
	// Blank and duplicate keywords are dropped
	if len(cfg.ExcludedTitleKeywords) != 1 || cfg.ExcludedTitleKeywords[0] != "banking" {
		t.Errorf("ExcludedTitleKeywords = %v, want [banking]", cfg.ExcludedTitleKeywords)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestClampInterval(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 1},
		{0.5, 1},
		{1, 1},
		{10, 10},
		{300, 300},
		{301, 300},
		{-5, 1},
	}
	for _, tc := range cases {
		if got := ClampInterval(tc.in); got != tc.want {
			t.Errorf("ClampInterval(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRules(t *testing.T) {
	cfg := &Config{
		ExcludedBundleIDs:     []string{"com.example.app"},
		ExcludedTitleKeywords: []string{"secret"},
		IgnoreIncognito:       true,
	}

	rules := cfg.Rules()
	if len(rules.BundleIDs) != 1 || rules.BundleIDs[0] != "com.example.app" {
		t.Errorf("BundleIDs = %v", rules.BundleIDs)
	}
	if len(rules.TitleKeywords) != 1 || rules.TitleKeywords[0] != "secret" {
		t.Errorf("TitleKeywords = %v", rules.TitleKeywords)
	}
	if !rules.IgnoreIncognito {
		t.Error("IgnoreIncognito not carried into rule set")
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{ExcludedBundleIDs: []string{"a", "b"}}
	overlay := &Config{ExcludedBundleIDs: []string{"b", "c"}}

	merged := Merge(base, overlay)
	if len(merged.ExcludedBundleIDs) != 3 {
		t.Errorf("merged ExcludedBundleIDs = %v, want [a b c]", merged.ExcludedBundleIDs)
	}
}
