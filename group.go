package sketch

import "sync/atomic"

// GroupTag identifies a set of strokes that are selected and edited
// together. Tags are compared by value; GroupNone marks an ungrouped stroke.
type GroupTag uint32

// GroupNone is the tag of strokes that belong to no group.
const GroupNone GroupTag = 0

// IsNone reports whether g is GroupNone.
func (g GroupTag) IsNone() bool { return g == GroupNone }

// GroupAllocator hands out fresh group tags. The zero value is ready to use
// and is safe for concurrent use.
type GroupAllocator struct {
	last atomic.Uint32
}

// New returns a tag that has not been returned before by this allocator.
func (a *GroupAllocator) New() GroupTag {
	return GroupTag(a.last.Add(1))
}

// Reserve makes sure tags up to and including g are never handed out. It is
// used after loading strokes whose tags were allocated in another session.
func (a *GroupAllocator) Reserve(g GroupTag) {
	for {
		cur := a.last.Load()
		if uint32(g) <= cur || a.last.CompareAndSwap(cur, uint32(g)) {
			return
		}
	}
}

// StrokeFlags is a bit set of per-stroke markers.
type StrokeFlags uint32

const (
	// FlagIsGroupContinue marks a stroke drawn as part of the same gesture
	// as the stroke before it, so undo treats both as one.
	FlagIsGroupContinue StrokeFlags = 1 << 1
)

// Has reports whether all bits of f are set.
func (s StrokeFlags) Has(f StrokeFlags) bool { return s&f == f }
