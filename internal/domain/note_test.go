package domain

import (
	"testing"
	"time"
)

func ts(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}

func TestParseNoteLedger(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty input", raw: "", want: 0},
		{name: "empty array", raw: "[]", want: 0},
		{
			name: "array of notes",
			raw:  `[{"note":"a","addedBy":"x","timestamp":"2024-03-01T12:00:00Z"},{"note":"b","addedBy":"y","timestamp":"2024-03-02T12:00:00Z"}]`,
			want: 2,
		},
		{
			name: "single object wrapped",
			raw:  `{"note":"solo","addedBy":"x","timestamp":"2024-03-01T12:00:00Z"}`,
			want: 1,
		},
		{name: "plain garbage degrades to empty", raw: "not json at all", want: 0},
		{name: "json of wrong shape degrades to empty", raw: `"just a string"`, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ledger := ParseNoteLedger([]byte(tc.raw))
			if len(ledger) != tc.want {
				t.Errorf("got %d entries, want %d", len(ledger), tc.want)
			}
		})
	}
}

func TestParseNoteLedgerSortsStoredEntries(t *testing.T) {
	raw := `[{"note":"late","addedBy":"x","timestamp":"2024-03-05T12:00:00Z"},{"note":"early","addedBy":"y","timestamp":"2024-03-01T12:00:00Z"}]`
	ledger := ParseNoteLedger([]byte(raw))
	if len(ledger) != 2 {
		t.Fatalf("got %d entries, want 2", len(ledger))
	}
	if ledger[0].Text != "early" || ledger[1].Text != "late" {
		t.Errorf("ledger not sorted ascending: %q, %q", ledger[0].Text, ledger[1].Text)
	}
}

func TestAppendKeepsLedgerSorted(t *testing.T) {
	ledger := NoteLedger{}
	ledger = ledger.Append(Note{Text: "third", AddedBy: "a", Timestamp: ts(3)})
	ledger = ledger.Append(Note{Text: "first", AddedBy: "b", Timestamp: ts(1)})
	ledger = ledger.Append(Note{Text: "second", AddedBy: "c", Timestamp: ts(2)})

	want := []string{"first", "second", "third"}
	for i, text := range want {
		if ledger[i].Text != text {
			t.Errorf("position %d: got %q, want %q", i, ledger[i].Text, text)
		}
	}
}

func TestAppendUnsortedKeepsInsertionOrder(t *testing.T) {
	ledger := NoteLedger{{Text: "late", AddedBy: "a", Timestamp: ts(5)}}
	ledger = ledger.AppendUnsorted(Note{Text: "early-but-last", AddedBy: "b", Timestamp: ts(1)})

	if ledger[1].Text != "early-but-last" {
		t.Errorf("unsorted append moved the entry: got %q at tail", ledger[1].Text)
	}
}

func TestEncodeEmptyLedger(t *testing.T) {
	raw, err := NoteLedger(nil).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("got %q, want []", raw)
	}
}
