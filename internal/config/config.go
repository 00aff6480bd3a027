package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hindsight-sh/hindsight/internal/exclusion"
)

// OCR mode names accepted in config.
const (
	OCRModeFast     = "fast"
	OCRModeAccurate = "accurate"
)

// Sampling interval bounds in seconds.
const (
	MinIntervalSeconds = 1.0
	MaxIntervalSeconds = 300.0
)

// Config holds application configuration.
type Config struct {
	// SamplingIntervalSeconds is the capture tick period. Clamped to [1,300].
	SamplingIntervalSeconds float64 `json:"sampling_interval_seconds"`

	// OCRMode selects the recognition mode: "fast" or "accurate".
	// Read per extraction call, so edits apply without restarting capture.
	OCRMode string `json:"ocr_mode"`

	// ExcludedBundleIDs are application bundle identifiers that are never
	// captured (exact match).
	ExcludedBundleIDs []string `json:"excluded_bundle_ids,omitempty"`

	// ExcludedTitleKeywords exclude any window whose title contains one of
	// these substrings (case-insensitive).
	ExcludedTitleKeywords []string `json:"excluded_title_keywords,omitempty"`

	// IgnoreIncognito excludes private/incognito browser windows.
	IgnoreIncognito bool `json:"ignore_incognito,omitempty"`

	// PreambleTruncateChars bounds each event's OCR text in the assembled
	// context preamble.
	PreambleTruncateChars int `json:"preamble_truncate_chars"`

	// TesseractPath overrides tesseract binary discovery (optional).
	TesseractPath string `json:"tesseract_path,omitempty"`

	// DBMaxOpenConns limits open database connections. 0 means the sql.DB
	// default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections. 0 means default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SamplingIntervalSeconds: 10,
		OCRMode:                 OCRModeAccurate,
		PreambleTruncateChars:   200,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.hindsight.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SamplingIntervalSeconds = overlay.SamplingIntervalSeconds
	if result.SamplingIntervalSeconds == 0 {
		result.SamplingIntervalSeconds = base.SamplingIntervalSeconds
	}

	result.OCRMode = overlay.OCRMode
	if result.OCRMode == "" {
		result.OCRMode = base.OCRMode
	}

	result.PreambleTruncateChars = overlay.PreambleTruncateChars
	if result.PreambleTruncateChars == 0 {
		result.PreambleTruncateChars = base.PreambleTruncateChars
	}

	result.TesseractPath = overlay.TesseractPath
	if result.TesseractPath == "" {
		result.TesseractPath = base.TesseractPath
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.IgnoreIncognito = base.IgnoreIncognito || overlay.IgnoreIncognito

	// Arrays: merge and deduplicate
	result.ExcludedBundleIDs = mergeStringSlice(base.ExcludedBundleIDs, overlay.ExcludedBundleIDs)
	result.ExcludedTitleKeywords = mergeStringSlice(base.ExcludedTitleKeywords, overlay.ExcludedTitleKeywords)

	return result
}

// ClampInterval bounds an interval to [MinIntervalSeconds, MaxIntervalSeconds].
func ClampInterval(seconds float64) float64 {
	if seconds < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if seconds > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return seconds
}

// Rules materializes the exclusion rule set from the current config values.
// Called once per capture tick so rule edits apply between ticks.
func (c *Config) Rules() exclusion.RuleSet {
	return exclusion.RuleSet{
		BundleIDs:       c.ExcludedBundleIDs,
		TitleKeywords:   c.ExcludedTitleKeywords,
		IgnoreIncognito: c.IgnoreIncognito,
	}
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
