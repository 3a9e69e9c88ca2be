package speech

// ProgressTracker folds per-chunk boundary offsets into one global
// percentage over the whole document. Character counts refer to the
// trimmed chunk contents, not the original untrimmed input.
type ProgressTracker struct {
	total     int // sum of all chunk lengths for the session
	completed int // characters of fully completed chunks
	intra     int // boundary offset within the current chunk
}

// NewProgressTracker returns a tracker for a document of total runes.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{total: total}
}

// Reset rearms the tracker for a new session of total runes.
func (t *ProgressTracker) Reset(total int) {
	t.total = total
	t.completed = 0
	t.intra = 0
}

// Boundary records a boundary offset within the current chunk. Offsets
// never move progress backwards; a late or duplicate notification is
// absorbed silently.
func (t *ProgressTracker) Boundary(offset int) {
	if offset > t.intra {
		t.intra = offset
	}
}

// CompleteChunk marks the current chunk of length runes as finished and
// rewinds the intra-chunk offset for the next one.
func (t *ProgressTracker) CompleteChunk(length int) {
	t.completed += length
	t.intra = 0
}

// Percent returns the global progress, clamped to [0, 100].
func (t *ProgressTracker) Percent() float64 {
	if t.total <= 0 {
		return 0
	}
	pct := float64(t.completed+t.intra) / float64(t.total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
