package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Note is a single immutable entry in a ticket's note ledger.
type Note struct {
	Text      string    `json:"note"`
	AddedBy   string    `json:"addedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// NoteLedger is the ordered, append-only annotation trail of a ticket.
// Entries are kept ascending by timestamp regardless of insertion order.
type NoteLedger []Note

// ParseNoteLedger decodes the stored note column. The historical data is a
// JSON array inside a text column, but older rows may hold a single object,
// an empty string, or garbage; anything unreadable degrades to an empty
// ledger instead of an error.
func ParseNoteLedger(raw []byte) NoteLedger {
	if len(raw) == 0 {
		return NoteLedger{}
	}
	var ledger NoteLedger
	if err := json.Unmarshal(raw, &ledger); err == nil {
		return ledger.Sorted()
	}
	var single Note
	if err := json.Unmarshal(raw, &single); err == nil {
		return NoteLedger{single}
	}
	return NoteLedger{}
}

// Append adds an entry and re-sorts the ledger ascending by timestamp.
func (l NoteLedger) Append(note Note) NoteLedger {
	return append(l, note).Sorted()
}

// AppendUnsorted adds an entry at the end without re-sorting. This preserves
// the historical add-note behavior, which skipped the sort that assignment
// and resolution perform.
func (l NoteLedger) AppendUnsorted(note Note) NoteLedger {
	return append(l, note)
}

// Sorted returns the ledger ordered ascending by timestamp. The sort is
// stable so same-instant entries keep their insertion order.
func (l NoteLedger) Sorted() NoteLedger {
	out := make(NoteLedger, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Encode serializes the ledger for the text column. An empty ledger encodes
// as an empty JSON array so round-trips stay well-formed.
func (l NoteLedger) Encode() ([]byte, error) {
	if l == nil {
		l = NoteLedger{}
	}
	return json.Marshal(l)
}
