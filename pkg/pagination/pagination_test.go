package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		input int
		want  int
	}{
		{name: "zero uses default", input: 0, want: DefaultLimit},
		{name: "negative uses default", input: -5, want: DefaultLimit},
		{name: "within range passes through", input: 40, want: 40},
		{name: "above max is capped", input: 500, want: MaxLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.input); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestTrimPage(t *testing.T) {
	rows := []int{1, 2, 3, 4}

	page, hasMore := TrimPage(rows, 3)
	if !hasMore {
		t.Fatal("expected more pages")
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}

	page, hasMore = TrimPage(rows, 10)
	if hasMore {
		t.Fatal("expected no more pages")
	}
	if len(page) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(page))
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(cursor)
	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("created at mismatch: %v vs %v", parsed.CreatedAt, cursor.CreatedAt)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("id mismatch: %s vs %s", parsed.ID, cursor.ID)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	parsed, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("expected nil error for blank cursor, got %v", err)
	}
	if parsed != nil {
		t.Fatal("expected nil cursor for blank input")
	}

	if _, err := ParseCursor("not base64!!"); err == nil {
		t.Fatal("expected error for malformed base64")
	}
	if _, err := ParseCursor("aGVsbG8="); err == nil {
		t.Fatal("expected error for cursor missing separator")
	}
}
