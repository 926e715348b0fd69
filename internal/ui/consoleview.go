package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buildpad/internal/console"
)

// consoleView renders the build console pane. It follows the tail until
// the user scrolls up, then holds position until scrolled back down.
type consoleView struct {
	cons   *console.Console
	offset int // lines scrolled up from the tail; 0 follows output
}

// scroll moves the view by delta lines (positive scrolls up into
// history).
func (v *consoleView) scroll(delta, height int) {
	v.offset += delta
	max := v.cons.LineCount() - height
	if max < 0 {
		max = 0
	}
	if v.offset > max {
		v.offset = max
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

// handleKey processes console pane keys. Returns true if handled.
func (v *consoleView) handleKey(ev *tcell.EventKey, r rect) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		v.scroll(1, r.height())
	case tcell.KeyDown:
		v.scroll(-1, r.height())
	case tcell.KeyPgUp:
		v.scroll(r.height(), r.height())
	case tcell.KeyPgDn:
		v.scroll(-r.height(), r.height())
	case tcell.KeyHome:
		v.scroll(v.cons.LineCount(), r.height())
	case tcell.KeyEnd:
		v.offset = 0
	default:
		return false
	}
	return true
}

// render draws the visible console lines.
func (v *consoleView) render(s tcell.Screen, r rect) {
	height := r.height()
	lines := v.cons.Lines()

	end := len(lines) - v.offset
	if end > len(lines) {
		end = len(lines)
	}
	start := end - height
	if start < 0 {
		start = 0
	}

	y := r.Top
	for _, line := range lines[start:end] {
		fillRow(s, y, r, styleDefault)
		drawText(s, r.Left, y, r, tagStyle(line.Tag), line.Text)
		y++
	}
	for ; y < r.Bottom; y++ {
		fillRow(s, y, r, styleDefault)
	}
}
