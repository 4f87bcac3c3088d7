// Package batch joins input lines into message-sized chunks.
package batch

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxBytes is the platform's limit on text message content.
const DefaultMaxBytes = 2048

// Batcher accumulates lines until a batch is ready to be sent.
// It tracks the size limit and decides when to flush.
type Batcher interface {
	// Add appends a line and returns any batches that are complete
	// because the line did not fit.
	Add(line string) []string

	// ShouldSend returns true if the pending batch is due by time.
	ShouldSend() bool

	// Flush returns the pending batch and resets the batcher.
	Flush() string

	// HasPending returns true if there are lines waiting to be sent.
	HasPending() bool
}

// LineBatcher joins lines with "\n" into batches of at most maxBytes.
// Lines longer than maxBytes are split on rune boundaries.
type LineBatcher struct {
	buf      strings.Builder
	maxBytes int
	interval time.Duration
	lastSend time.Time
	now      func() time.Time
}

// NewLineBatcher creates a batcher. A non-positive maxBytes means
// DefaultMaxBytes; a non-positive interval disables time-based sends.
func NewLineBatcher(maxBytes int, interval time.Duration) *LineBatcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	b := &LineBatcher{
		maxBytes: maxBytes,
		interval: interval,
		now:      time.Now,
	}
	b.lastSend = b.now()
	return b
}

// Add appends line to the pending batch.
func (b *LineBatcher) Add(line string) []string {
	var ready []string
	for _, part := range split(line, b.maxBytes) {
		need := len(part)
		if b.buf.Len() > 0 {
			need++ // separator
		}
		if b.buf.Len() > 0 && b.buf.Len()+need > b.maxBytes {
			ready = append(ready, b.Flush())
		}
		if b.buf.Len() > 0 {
			b.buf.WriteByte('\n')
		}
		b.buf.WriteString(part)
	}
	return ready
}

// ShouldSend returns true if there is a pending batch and the interval
// has elapsed since the last flush.
func (b *LineBatcher) ShouldSend() bool {
	if b.buf.Len() == 0 || b.interval <= 0 {
		return false
	}
	return b.now().Sub(b.lastSend) >= b.interval
}

// Flush returns the pending batch, clears it and restarts the interval.
func (b *LineBatcher) Flush() string {
	out := b.buf.String()
	b.Reset()
	return out
}

// Reset clears the batch and updates the last send time.
func (b *LineBatcher) Reset() {
	b.buf.Reset()
	b.lastSend = b.now()
}

// HasPending returns true if there are lines waiting to be sent.
func (b *LineBatcher) HasPending() bool {
	return b.buf.Len() > 0
}

// Size returns the byte length of the pending batch.
func (b *LineBatcher) Size() int {
	return b.buf.Len()
}

// TimeSinceLastSend returns the duration since the last flush.
func (b *LineBatcher) TimeSinceLastSend() time.Duration {
	return b.now().Sub(b.lastSend)
}

// split cuts s into pieces of at most max bytes without breaking a rune.
// An empty line is kept as a single empty piece.
func split(s string, max int) []string {
	if len(s) <= max {
		return []string{s}
	}
	var parts []string
	for len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(s)
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
