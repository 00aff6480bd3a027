package event

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if len(id) != 26 {
		t.Errorf("ULID length = %d, want 26", len(id))
	}

	// IDs must be unique across calls
	id2, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if id == id2 {
		t.Errorf("two generated IDs are identical: %s", id)
	}
}

func TestFold_Lowercases(t *testing.T) {
	if got := Fold("INVOICE-2024.pdf"); got != "invoice-2024.pdf" {
		t.Errorf("Fold() = %q, want %q", got, "invoice-2024.pdf")
	}
}

func TestFold_StripsDiacritics(t *testing.T) {
	cases := map[string]string{
		"Café":      "cafe",
		"Zürich":    "zurich",
		"résumé":    "resume",
		"naïve":     "naive",
		"plain txt": "plain txt",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFold_MatchIsSymmetric(t *testing.T) {
	// The search contract folds both sides; verify a folded keyword is a
	// substring of the folded text.
	text := Fold("Attached: INVOICE-2024.pdf")
	keyword := Fold("Invoice")
	if !strings.Contains(text, keyword) {
		t.Errorf("folded keyword %q not found in folded text %q", keyword, text)
	}
}
