package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hindsight-sh/hindsight/internal/errors"
	"github.com/hindsight-sh/hindsight/internal/event"
)

const selectColumns = `id, captured_at, ocr_text, screenshot_path, app_name, bundle_id`

// Insert stores a new capture event inside a transaction so a failed write
// leaves no partial record visible to readers.
func Insert(database *sql.DB, e *event.CaptureEvent) error {
	tx, err := database.Begin()
	if err != nil {
		return errors.NewPersistence(err)
	}
	defer tx.Rollback() //nolint:errcheck

	// ocr_text_norm carries the folded text so keyword search stays a plain
	// substring match at query time.
	var norm sql.NullString
	if e.OCRText != nil {
		norm = sql.NullString{String: event.Fold(*e.OCRText), Valid: true}
	}

	query := `
		INSERT INTO events (
			id, captured_at, ocr_text, ocr_text_norm,
			screenshot_path, app_name, bundle_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		e.ID, e.Timestamp, toNullString(e.OCRText), norm,
		toNullString(e.ScreenshotPath), toNullString(e.ApplicationName),
		toNullString(e.BundleIdentifier), time.Now().Unix(),
	)
	if err != nil {
		return errors.NewPersistence(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// FetchRecent returns events ordered by capture timestamp descending.
// limit = 0 means unbounded. An empty store yields an empty slice, not an error.
func FetchRecent(database *sql.DB, limit int) ([]event.CaptureEvent, error) {
	query := `SELECT ` + selectColumns + ` FROM events ORDER BY captured_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// FetchByKeywords returns events whose folded OCR text contains any of the
// given pre-folded keywords, ordered by capture timestamp descending.
// Callers fold keywords with event.Fold before passing them in.
func FetchByKeywords(database *sql.DB, foldedKeywords []string) ([]event.CaptureEvent, error) {
	if len(foldedKeywords) == 0 {
		return []event.CaptureEvent{}, nil
	}

	conditions := make([]string, 0, len(foldedKeywords))
	args := make([]any, 0, len(foldedKeywords))
	for _, kw := range foldedKeywords {
		conditions = append(conditions, "ocr_text_norm LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(kw)+"%")
	}

	query := `SELECT ` + selectColumns + ` FROM events WHERE ` +
		strings.Join(conditions, " OR ") + ` ORDER BY captured_at DESC`

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountEvents returns the total number of stored events.
func CountEvents(database *sql.DB) (int, error) {
	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// escapeLike escapes LIKE wildcards in a keyword so they match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// scanEvents scans all rows into capture events.
func scanEvents(rows *sql.Rows) ([]event.CaptureEvent, error) {
	events := []event.CaptureEvent{}
	for rows.Next() {
		var (
			e              event.CaptureEvent
			ocrText        sql.NullString
			screenshotPath sql.NullString
			appName        sql.NullString
			bundleID       sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &ocrText, &screenshotPath, &appName, &bundleID); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.OCRText = fromNullString(ocrText)
		e.ScreenshotPath = fromNullString(screenshotPath)
		e.ApplicationName = fromNullString(appName)
		e.BundleIdentifier = fromNullString(bundleID)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return events, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
