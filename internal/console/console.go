// Package console implements the shared output surface for build and run
// tasks. Producers on any goroutine append tagged chunks; the UI goroutine
// drains them on its own schedule, so producers never block on rendering.
package console

import (
	"strings"
	"sync"
	"time"
)

// Tag classifies a chunk of console output.
type Tag int

const (
	// TagSystem is for status and echo lines produced by buildpad itself.
	TagSystem Tag = iota
	// TagStdout is for captured standard output of a child process.
	TagStdout
	// TagStderr is for captured standard error of a child process.
	TagStderr
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagSystem:
		return "system"
	case TagStdout:
		return "stdout"
	case TagStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Chunk is a single tagged write. Chunks preserve write order and may span
// multiple lines or end mid-line.
type Chunk struct {
	// Text is the raw chunk text, newlines included.
	Text string

	// Tag identifies the producer stream.
	Tag Tag

	// Time is when the chunk was written.
	Time time.Time
}

// Line is one rendered scrollback line.
type Line struct {
	// Text is the line content without the trailing newline.
	Text string

	// Tag is the tag of the chunk that opened the line.
	Tag Tag
}

// Console is the append-only, thread-safe output sink.
//
// Write and Writeline are safe from any goroutine. Drain folds pending
// chunks into the scrollback and is intended to be called from the single
// goroutine that owns the display.
type Console struct {
	mu      sync.Mutex
	pending []Chunk
	lines   []Line
	open    bool // last line not yet newline-terminated
	limit   int
	notify  func()
}

// DefaultScrollback is the scrollback line limit used when none is given.
const DefaultScrollback = 2000

// New creates a console with the given scrollback limit.
// A limit <= 0 selects DefaultScrollback.
func New(limit int) *Console {
	if limit <= 0 {
		limit = DefaultScrollback
	}
	return &Console{limit: limit}
}

// SetNotify registers a callback invoked after each write. The callback
// must be cheap and non-blocking; it is meant to wake the display loop.
func (c *Console) SetNotify(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

// Write appends a tagged chunk. Safe from any goroutine; never blocks on
// delivery.
func (c *Console) Write(text string, tag Tag) {
	if text == "" {
		return
	}
	c.mu.Lock()
	c.pending = append(c.pending, Chunk{Text: text, Tag: tag, Time: time.Now()})
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Writeline appends text followed by a newline.
func (c *Console) Writeline(text string, tag Tag) {
	c.Write(text+"\n", tag)
}

// Drain folds all pending chunks into the scrollback in write order.
// It returns true if the scrollback changed.
func (c *Console) Drain() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return false
	}

	for _, chunk := range c.pending {
		c.appendChunk(chunk)
	}
	c.pending = c.pending[:0]
	c.trim()
	return true
}

// appendChunk splits a chunk into scrollback lines. A chunk continues the
// open line only when the tags match; a tag change always starts a new
// line so stderr is never folded into a stdout line.
func (c *Console) appendChunk(chunk Chunk) {
	text := chunk.Text
	for len(text) > 0 {
		idx := strings.IndexByte(text, '\n')
		seg := text
		terminated := false
		if idx >= 0 {
			seg = text[:idx]
			text = text[idx+1:]
			terminated = true
		} else {
			text = ""
		}

		if c.open && len(c.lines) > 0 && c.lines[len(c.lines)-1].Tag == chunk.Tag {
			c.lines[len(c.lines)-1].Text += seg
		} else {
			c.lines = append(c.lines, Line{Text: seg, Tag: chunk.Tag})
		}
		c.open = !terminated
	}
}

// trim drops the oldest lines once the scrollback exceeds its limit.
func (c *Console) trim() {
	if over := len(c.lines) - c.limit; over > 0 {
		c.lines = append(c.lines[:0], c.lines[over:]...)
	}
}

// Lines returns a copy of the current scrollback.
func (c *Console) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Tail returns at most n of the most recent scrollback lines.
func (c *Console) Tail(n int) []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || len(c.lines) == 0 {
		return nil
	}
	if n > len(c.lines) {
		n = len(c.lines)
	}
	out := make([]Line, n)
	copy(out, c.lines[len(c.lines)-n:])
	return out
}

// LineCount returns the number of scrollback lines.
func (c *Console) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Pending returns the number of chunks waiting to be drained.
func (c *Console) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Clear empties both the pending queue and the scrollback.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = c.pending[:0]
	c.lines = c.lines[:0]
	c.open = false
}
