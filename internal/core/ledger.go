package core

import (
	"fmt"

	"ledger/internal/id"
)

// Ledger is the ordered sequence of records held by a session. Positions
// are zero-based and follow insertion order. Methods never modify the
// receiver; mutations return a new slice.
type Ledger []Record

// newID mints record IDs; tests swap in a generator with a fixed clock.
var newID = id.New

func (l Ledger) Len() int {
	return len(l)
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return Ledger{}
	}
	return append(Ledger(nil), l...)
}

// Append validates r and returns a ledger with r at the end. An empty ID
// is replaced with a fresh one.
func (l Ledger) Append(r Record) (Ledger, error) {
	if err := r.Validate(); err != nil {
		return l, err
	}
	if r.ID == "" {
		r.ID = newID()
	}
	next := make(Ledger, len(l), len(l)+1)
	copy(next, l)
	return append(next, r), nil
}

// DeleteAt removes the record at position i. Records after i shift down
// by one.
func (l Ledger) DeleteAt(i int) (Ledger, error) {
	if i < 0 || i >= len(l) {
		return l, fmt.Errorf("%w: %d (ledger has %d records)", ErrInvalidIndex, i, len(l))
	}
	next := make(Ledger, 0, len(l)-1)
	next = append(next, l[:i]...)
	return append(next, l[i+1:]...), nil
}

// IndexOf returns the position of the record with the given ID, or -1.
func (l Ledger) IndexOf(recordID string) int {
	if recordID == "" {
		return -1
	}
	for i, r := range l {
		if r.ID == recordID {
			return i
		}
	}
	return -1
}

// DeleteByID removes the record with the given ID and reports the removed
// record together with the position it held.
func (l Ledger) DeleteByID(recordID string) (Ledger, Record, int, error) {
	i := l.IndexOf(recordID)
	if i < 0 {
		return l, Record{}, -1, fmt.Errorf("%w: %q", ErrRecordNotFound, recordID)
	}
	removed := l[i]
	next, err := l.DeleteAt(i)
	if err != nil {
		return l, Record{}, -1, err
	}
	return next, removed, i, nil
}

// WithIDs returns a copy where every record without an ID gets one.
func (l Ledger) WithIDs() Ledger {
	next := l.Clone()
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = newID()
		}
	}
	return next
}

// Validate checks every record and reports the first offending position.
func (l Ledger) Validate() error {
	for i, r := range l {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
