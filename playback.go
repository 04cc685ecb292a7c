package sketch

// Playback scrubs through a ledger in time, showing the strokes started at
// or before the playhead and hiding the rest.
type Playback struct {
	ledger  *Ledger
	shown   int
	version uint64
	synced  bool
}

// NewPlayback returns a playback over l. Nothing is hidden until the first
// Seek.
func NewPlayback(l *Ledger) *Playback {
	return &Playback{ledger: l}
}

// Seek moves the playhead to ms and returns the number of visible strokes.
// Only strokes whose visibility changes are touched, unless strokes were
// added or removed since the previous call. Strokes without geometry are
// ignored.
func (pb *Playback) Seek(ms uint32) int {
	idx, strokes, version := pb.ledger.seekSnapshot(ms)

	lo, hi := 0, len(strokes)
	if pb.synced && pb.version == version {
		lo, hi = min(pb.shown, idx), max(pb.shown, idx)
		hi = min(hi, len(strokes))
	}
	for i := lo; i < hi; i++ {
		// NotCreated strokes have nothing to hide.
		_ = strokes[i].Hide(i >= idx)
	}
	pb.shown = idx
	pb.version = version
	pb.synced = true
	return idx
}

// ShowAll makes every created stroke visible and resets the playhead.
func (pb *Playback) ShowAll() {
	for s := range pb.ledger.All() {
		_ = s.Hide(false)
	}
	pb.shown = 0
	pb.synced = false
}
