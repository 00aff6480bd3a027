package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
)

// tesseractCandidates are probed when the binary is not on PATH.
var tesseractCandidates = []string{
	"/usr/bin/tesseract",
	"/usr/local/bin/tesseract",
	"/opt/homebrew/bin/tesseract",
}

// Tesseract drives the tesseract CLI. Recognized regions come back one per
// line on stdout, which matches the one-region-per-line contract directly.
type Tesseract struct {
	execPath string
	lang     string
}

// TesseractOption configures a Tesseract extractor.
type TesseractOption func(*Tesseract)

// WithExecPath overrides binary discovery.
func WithExecPath(path string) TesseractOption {
	return func(t *Tesseract) {
		if path != "" {
			t.execPath = path
		}
	}
}

// WithLanguage sets the recognition language (default "eng").
func WithLanguage(lang string) TesseractOption {
	return func(t *Tesseract) {
		if lang != "" {
			t.lang = lang
		}
	}
}

// NewTesseract creates a Tesseract extractor, locating the binary if no
// override is given.
func NewTesseract(opts ...TesseractOption) *Tesseract {
	t := &Tesseract{lang: "eng"}
	for _, opt := range opts {
		opt(t)
	}
	if t.execPath == "" {
		t.execPath = findTesseract()
	}
	return t
}

// Available reports whether a usable tesseract binary was found.
func (t *Tesseract) Available() bool {
	if t.execPath == "" {
		return false
	}
	_, err := os.Stat(t.execPath)
	return err == nil
}

// Version returns the tesseract version line, or "" if unavailable.
func (t *Tesseract) Version() string {
	if !t.Available() {
		return ""
	}
	out, err := exec.Command(t.execPath, "--version").CombinedOutput()
	if err != nil {
		return ""
	}
	lines := strings.SplitN(string(out), "\n", 2)
	return strings.TrimSpace(lines[0])
}

// Extract runs tesseract over img. Mode maps to page segmentation: accurate
// uses full automatic layout analysis, fast assumes a single uniform block,
// which skips the layout pass and is markedly cheaper on large screens.
func (t *Tesseract) Extract(ctx context.Context, img image.Image, mode Mode) (*string, error) {
	if !t.Available() {
		return nil, fmt.Errorf("tesseract binary not found")
	}

	tmp, err := os.CreateTemp("", "hindsight-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp image: %w", err)
	}

	psm := "3" // full automatic page segmentation
	if mode == ModeFast {
		psm = "6" // assume a single uniform block of text
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.execPath, tmpPath, "stdout", "-l", t.lang, "--psm", psm)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return JoinRegions(strings.Split(stdout.String(), "\n")), nil
}

// findTesseract locates the tesseract binary via PATH, then known locations.
func findTesseract() string {
	if path, err := exec.LookPath("tesseract"); err == nil {
		return path
	}
	for _, candidate := range tesseractCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// JoinRegions trims recognized regions, drops blanks, and joins the rest one
// per line. Returns nil (not an empty string) when nothing remains, so "no
// text found" stays distinguishable from empty text downstream.
func JoinRegions(regions []string) *string {
	kept := make([]string, 0, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, "\n")
	return &joined
}
