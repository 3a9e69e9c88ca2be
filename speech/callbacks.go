package speech

// BoundaryInfo describes a word or sentence boundary reached inside the
// current chunk.
type BoundaryInfo struct {
	ChunkIndex int     // index of the chunk being spoken
	CharIndex  int     // rune offset within that chunk's trimmed text
	Percent    float64 // global progress after this boundary
}

// Callbacks holds the consumer's lifecycle hooks. A nil field is a
// no-op. SetCallbacks replaces the whole set atomically; there is no
// subscription list, exactly one registration is active per controller.
type Callbacks struct {
	OnStart    func()             // first chunk confirmed started
	OnEnd      func()             // session finished, was stopped, or aborted
	OnPause    func()             // playback paused
	OnResume   func()             // playback resumed
	OnBoundary func(BoundaryInfo) // progress within the current chunk
	OnError    func(error)        // session aborted by an engine failure
}
