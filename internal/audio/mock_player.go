package audio

import (
	"sync"
	"time"
)

// MockSink is a Sink for tests. It advances position on a wall clock
// scaled by a speed factor, so playback of long buffers can be
// simulated in milliseconds without touching an audio device.
type MockSink struct {
	sampleRate int
	speed      float64

	mu      sync.Mutex
	active  bool
	paused  bool
	closed  bool
	started time.Time
	elapsed time.Duration
	total   time.Duration
	last    []byte

	plays   int
	pauses  int
	resumes int
	stops   int
}

// NewMockSink returns a sink that simulates playback at speed times
// real time. A speed of 100 plays one second of audio in 10ms.
func NewMockSink(sampleRate int, speed float64) *MockSink {
	if speed <= 0 {
		speed = 1
	}
	return &MockSink{sampleRate: sampleRate, speed: speed}
}

func (m *MockSink) Play(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrPlayerClosed
	}
	if m.active {
		return ErrAlreadyActive
	}
	m.last = append([]byte(nil), pcm...)
	m.total = Duration(len(pcm), m.sampleRate)
	m.active = true
	m.paused = false
	m.started = time.Now()
	m.elapsed = 0
	m.plays++
	return nil
}

func (m *MockSink) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrPlayerClosed
	}
	if !m.active {
		return ErrNotActive
	}
	if !m.paused {
		m.elapsed += m.scaled(time.Since(m.started))
		m.paused = true
		m.pauses++
	}
	return nil
}

func (m *MockSink) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrPlayerClosed
	}
	if !m.active {
		return ErrNotActive
	}
	if m.paused {
		m.started = time.Now()
		m.paused = false
		m.resumes++
	}
	return nil
}

func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrPlayerClosed
	}
	if m.active {
		m.active = false
		m.paused = false
		m.elapsed = 0
		m.stops++
	}
	return nil
}

func (m *MockSink) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return 0
	}
	pos := m.elapsed
	if !m.paused {
		pos += m.scaled(time.Since(m.started))
	}
	if pos > m.total {
		pos = m.total
	}
	return pos
}

func (m *MockSink) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active && !m.paused
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.closed = true
	return nil
}

func (m *MockSink) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * m.speed)
}

// Finished reports whether the simulated stream has played to its end.
func (m *MockSink) Finished() bool {
	m.mu.Lock()
	active, paused := m.active, m.paused
	m.mu.Unlock()
	if !active || paused {
		return false
	}
	return m.Position() >= m.totalDuration()
}

func (m *MockSink) totalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// LastPCM returns a copy of the most recently played buffer.
func (m *MockSink) LastPCM() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.last...)
}

// Counts reports how many times each operation was called.
func (m *MockSink) Counts() (plays, pauses, resumes, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays, m.pauses, m.resumes, m.stops
}

var _ Sink = (*MockSink)(nil)
