package sketch

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"
)

// Ledger keeps strokes ordered by the timestamp of their first control
// point. Strokes with equal timestamps stay in insertion order.
//
// Insertion starts from a cursor left by the previous insertion or seek,
// so appending strokes in time order costs O(1) per stroke. The ledger is
// safe for concurrent use.
//
// The head timestamp of a stroke is read when it is added. A stroke whose
// first control point changes while it is in the ledger keeps its old
// position; remove and re-add it to restore the order.
type Ledger struct {
	mu      sync.RWMutex
	strokes []*Stroke
	cursor  int
	// version counts changes to the set of strokes.
	version uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add inserts s after every stroke whose head timestamp is not later than
// its own. A stroke without control points is rejected with ErrEmptyStroke
// and a warning.
func (l *Ledger) Add(s *Stroke) error {
	if s == nil {
		return fmt.Errorf("%w: add nil stroke", ErrInvalidOperation)
	}
	if len(s.ControlPoints) == 0 {
		Logger().Warn("sketch: rejected stroke without control points", "stroke", s.GUID)
		return fmt.Errorf("%w: %s", ErrEmptyStroke, s.GUID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	pos := l.upperBound(s.HeadTimestampMs())
	l.strokes = slices.Insert(l.strokes, pos, s)
	l.cursor = pos + 1
	l.version++
	return nil
}

// upperBound returns the index of the first stroke whose head timestamp is
// later than ms. The cursor is tried first.
func (l *Ledger) upperBound(ms uint32) int {
	n := len(l.strokes)
	c := min(l.cursor, n)
	if (c == 0 || l.strokes[c-1].HeadTimestampMs() <= ms) &&
		(c == n || l.strokes[c].HeadTimestampMs() > ms) {
		return c
	}
	return sort.Search(n, func(i int) bool {
		return l.strokes[i].HeadTimestampMs() > ms
	})
}

// Remove deletes s and reports whether it was present.
func (l *Ledger) Remove(s *Stroke) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(s)
	if i < 0 {
		return false
	}
	l.strokes = slices.Delete(l.strokes, i, i+1)
	if l.cursor > i {
		l.cursor--
	}
	l.version++
	return true
}

// indexOf searches the run of strokes sharing s's head timestamp first,
// then the whole ledger in case the timestamp changed after Add.
func (l *Ledger) indexOf(s *Stroke) int {
	if s == nil {
		return -1
	}
	ms := s.HeadTimestampMs()
	lo := sort.Search(len(l.strokes), func(i int) bool {
		return l.strokes[i].HeadTimestampMs() >= ms
	})
	for i := lo; i < len(l.strokes) && l.strokes[i].HeadTimestampMs() == ms; i++ {
		if l.strokes[i] == s {
			return i
		}
	}
	return slices.Index(l.strokes, s)
}

// IndexOf returns the position of s, or -1.
func (l *Ledger) IndexOf(s *Stroke) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexOf(s)
}

// Len returns the number of strokes.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.strokes)
}

// At returns the stroke at index i.
func (l *Ledger) At(i int) *Stroke {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.strokes[i]
}

// Strokes returns a snapshot of the strokes in order.
func (l *Ledger) Strokes() []*Stroke {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.strokes)
}

// All iterates over a snapshot of the strokes in order.
func (l *Ledger) All() iter.Seq[*Stroke] {
	strokes := l.Strokes()
	return func(yield func(*Stroke) bool) {
		for _, s := range strokes {
			if !yield(s) {
				return
			}
		}
	}
}

// Seek returns the number of strokes whose head timestamp is at or before
// ms, and leaves the insertion cursor there.
func (l *Ledger) Seek(ms uint32) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cursor = l.upperBound(ms)
	return l.cursor
}

// seekSnapshot is Seek plus a snapshot of the strokes and the version they
// belong to, taken under one lock.
func (l *Ledger) seekSnapshot(ms uint32) (int, []*Stroke, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cursor = l.upperBound(ms)
	return l.cursor, slices.Clone(l.strokes), l.version
}

// Version returns a counter that changes whenever a stroke is added or
// removed.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Between returns the strokes whose head timestamp t satisfies
// from <= t < to.
func (l *Ledger) Between(from, to uint32) []*Stroke {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lo := sort.Search(len(l.strokes), func(i int) bool {
		return l.strokes[i].HeadTimestampMs() >= from
	})
	hi := sort.Search(len(l.strokes), func(i int) bool {
		return l.strokes[i].HeadTimestampMs() >= to
	})
	if hi <= lo {
		return nil
	}
	return slices.Clone(l.strokes[lo:hi])
}

// Clear removes every stroke.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.strokes = nil
	l.cursor = 0
	l.version++
	l.mu.Unlock()
}
