package db

import (
	"database/sql"
	"testing"

	"github.com/hindsight-sh/hindsight/internal/event"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func strPtr(s string) *string { return &s }

func insertEvent(t *testing.T, database *sql.DB, id string, ts int64, text *string) {
	t.Helper()
	e := &event.CaptureEvent{
		ID:               id,
		Timestamp:        ts,
		OCRText:          text,
		ApplicationName:  strPtr("TestApp"),
		BundleIdentifier: strPtr("com.example.test"),
	}
	if err := Insert(database, e); err != nil {
		t.Fatalf("Insert(%s) error = %v", id, err)
	}
}

func TestInsertFetchRecent_RoundTrip(t *testing.T) {
	database := testDB(t)

	shot := "1700000000000.png"
	e := &event.CaptureEvent{
		ID:               "01HTESTEVENT00000000000001",
		Timestamp:        1700000000000,
		OCRText:          strPtr("Attached: INVOICE-2024.pdf"),
		ScreenshotPath:   &shot,
		ApplicationName:  strPtr("Mail"),
		BundleIdentifier: strPtr("com.apple.mail"),
	}
	if err := Insert(database, e); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	events, err := FetchRecent(database, 10)
	if err != nil {
		t.Fatalf("FetchRecent() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	got := events[0]
	if got.ID != e.ID || got.Timestamp != e.Timestamp {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if got.OCRText == nil || *got.OCRText != *e.OCRText {
		t.Errorf("OCRText = %v, want %q", got.OCRText, *e.OCRText)
	}
	if got.ScreenshotPath == nil || *got.ScreenshotPath != shot {
		t.Errorf("ScreenshotPath = %v, want %q", got.ScreenshotPath, shot)
	}
}

func TestInsert_NilOptionalsStayNil(t *testing.T) {
	database := testDB(t)

	e := &event.CaptureEvent{ID: "01HTESTEVENT00000000000002", Timestamp: 100}
	if err := Insert(database, e); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	events, err := FetchRecent(database, 0)
	if err != nil {
		t.Fatalf("FetchRecent() error = %v", err)
	}
	got := events[0]
	if got.OCRText != nil {
		t.Errorf("OCRText = %q, want nil (no text is not empty text)", *got.OCRText)
	}
	if got.ScreenshotPath != nil || got.ApplicationName != nil || got.BundleIdentifier != nil {
		t.Errorf("optional fields not nil: %+v", got)
	}
}

func TestInsert_DuplicateIDFails(t *testing.T) {
	database := testDB(t)

	insertEvent(t, database, "01HTESTEVENT00000000000003", 1, nil)
	e := &event.CaptureEvent{ID: "01HTESTEVENT00000000000003", Timestamp: 2}
	if err := Insert(database, e); err == nil {
		t.Error("Insert() with duplicate id error = nil, want persistence error")
	}

	// The failed write must not be partially visible
	count, err := CountEvents(database)
	if err != nil {
		t.Fatalf("CountEvents() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

func TestFetchRecent_OrderAndLimit(t *testing.T) {
	database := testDB(t)

	insertEvent(t, database, "01HTESTEVENT0000000000000A", 10_000, strPtr("first"))
	insertEvent(t, database, "01HTESTEVENT0000000000000B", 30_000, strPtr("third"))
	insertEvent(t, database, "01HTESTEVENT0000000000000C", 20_000, strPtr("second"))

	events, err := FetchRecent(database, 2)
	if err != nil {
		t.Fatalf("FetchRecent() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Timestamp != 30_000 || events[1].Timestamp != 20_000 {
		t.Errorf("order = [%d %d], want timestamp-descending [30000 20000]",
			events[0].Timestamp, events[1].Timestamp)
	}

	// limit 0 means unbounded
	all, err := FetchRecent(database, 0)
	if err != nil {
		t.Fatalf("FetchRecent(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("FetchRecent(0) returned %d events, want all 3", len(all))
	}
}

func TestFetchRecent_EmptyStore(t *testing.T) {
	database := testDB(t)

	events, err := FetchRecent(database, 5)
	if err != nil {
		t.Fatalf("FetchRecent() on empty store error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestFetchByKeywords_FoldedSubstringMatch(t *testing.T) {
	database := testDB(t)

	insertEvent(t, database, "01HTESTEVENT0000000000000D", 1_000, strPtr("Attached: INVOICE-2024.pdf"))
	insertEvent(t, database, "01HTESTEVENT0000000000000E", 2_000, strPtr("Réunion notes for café project"))
	insertEvent(t, database, "01HTESTEVENT0000000000000F", 3_000, nil)

	// Case-insensitive substring
	events, err := FetchByKeywords(database, []string{event.Fold("invoice")})
	if err != nil {
		t.Fatalf("FetchByKeywords() error = %v", err)
	}
	if len(events) != 1 || *events[0].OCRText != "Attached: INVOICE-2024.pdf" {
		t.Errorf("keyword 'invoice' matched %d events, want the invoice event", len(events))
	}

	// Diacritic-insensitive: "reunion" matches "Réunion"
	events, err = FetchByKeywords(database, []string{event.Fold("reunion")})
	if err != nil {
		t.Fatalf("FetchByKeywords() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("keyword 'reunion' matched %d events, want 1", len(events))
	}

	// OR across keywords, timestamp-descending
	events, err = FetchByKeywords(database, []string{event.Fold("invoice"), event.Fold("café")})
	if err != nil {
		t.Fatalf("FetchByKeywords() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("OR query matched %d events, want 2", len(events))
	}
	if events[0].Timestamp != 2_000 {
		t.Errorf("OR query order wrong: first timestamp = %d, want 2000", events[0].Timestamp)
	}
}

func TestFetchByKeywords_LikeWildcardsLiteral(t *testing.T) {
	database := testDB(t)

	insertEvent(t, database, "01HTESTEVENT0000000000000G", 1_000, strPtr("progress: 100% done"))
	insertEvent(t, database, "01HTESTEVENT0000000000000H", 2_000, strPtr("plain text"))

	events, err := FetchByKeywords(database, []string{event.Fold("100%")})
	if err != nil {
		t.Fatalf("FetchByKeywords() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("keyword '100%%' matched %d events, want 1 (wildcards must be literal)", len(events))
	}
}

func TestFetchByKeywords_EmptyList(t *testing.T) {
	database := testDB(t)
	insertEvent(t, database, "01HTESTEVENT0000000000000I", 1_000, strPtr("text"))

	events, err := FetchByKeywords(database, nil)
	if err != nil {
		t.Fatalf("FetchByKeywords(nil) error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("FetchByKeywords(nil) = %d events, want 0", len(events))
	}
}
