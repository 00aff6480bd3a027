// Package preamble assembles recall context from stored capture history: a
// bounded plain-text block a generation component can prepend to its prompt.
package preamble

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hindsight-sh/hindsight/internal/event"
)

// DefaultTruncateChars bounds each event's OCR text in the rendered block.
const DefaultTruncateChars = 200

// separator sits between rendered entries.
const separator = "\n---\n"

// RecentFetcher is the slice of the event store the assembler needs.
type RecentFetcher interface {
	FetchRecent(limit int) ([]event.CaptureEvent, error)
}

// Assembler renders recent history into a context preamble.
type Assembler struct {
	store         RecentFetcher
	truncateChars int
}

// New creates an assembler. truncateChars <= 0 selects the default bound.
func New(store RecentFetcher, truncateChars int) *Assembler {
	if truncateChars <= 0 {
		truncateChars = DefaultTruncateChars
	}
	return &Assembler{store: store, truncateChars: truncateChars}
}

// Build fetches the maxEvents most recent events and renders them oldest
// first as "[<time>] - <app>: <text>" entries. Returns "" when no events
// exist; callers omit the context block entirely rather than emitting an
// empty section header.
func (a *Assembler) Build(maxEvents int) (string, error) {
	events, err := a.store.FetchRecent(maxEvents)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", nil
	}

	// FetchRecent is newest-first; presentation is chronological.
	var sb strings.Builder
	for i := len(events) - 1; i >= 0; i-- {
		if sb.Len() > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(renderEvent(&events[i], a.truncateChars))
	}
	return sb.String(), nil
}

// renderEvent formats one history line.
func renderEvent(e *event.CaptureEvent, truncateChars int) string {
	when := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05")

	app := "Unknown"
	if e.ApplicationName != nil && *e.ApplicationName != "" {
		app = *e.ApplicationName
	}

	text := ""
	if e.OCRText != nil {
		text = truncate(strings.TrimSpace(*e.OCRText), truncateChars)
	}

	return "[" + when + "] - " + app + ": " + text
}

// truncate cuts s to at most max runes, appending an ellipsis when cut.
// Counting runes rather than bytes keeps multi-byte OCR output intact.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
