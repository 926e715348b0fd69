package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buildpad/internal/app"
	"github.com/dshills/buildpad/internal/highlight"
)

// editor is the edit pane: a cursor and viewport over the active
// document, with per-line syntax highlighting.
type editor struct {
	doc   *app.Document
	lexer *highlight.Lexer

	row, col int // cursor in buffer coordinates
	top      int // first visible line
	left     int // first visible column
}

// setDocument switches the editor to a document and resets the view.
func (e *editor) setDocument(doc *app.Document, lexer *highlight.Lexer) {
	e.doc = doc
	e.lexer = lexer
	e.row, e.col = 0, 0
	e.top, e.left = 0, 0
}

// clampCursor keeps the cursor inside the buffer.
func (e *editor) clampCursor() {
	if e.row < 0 {
		e.row = 0
	}
	if max := e.doc.LineCount() - 1; e.row > max {
		e.row = max
	}
	if e.col < 0 {
		e.col = 0
	}
	line := e.doc.Line(e.row)
	if e.col > len(line) {
		e.col = len(line)
	}
	// Moving between lines can land the byte offset inside a rune; snap
	// back to the rune start.
	for e.col > 0 && e.col < len(line) && !utf8.RuneStart(line[e.col]) {
		e.col--
	}
}

// scrollIntoView adjusts the viewport so the cursor is visible.
func (e *editor) scrollIntoView(r rect) {
	height := r.height()
	width := r.width() - e.gutterWidth()
	if e.row < e.top {
		e.top = e.row
	}
	if e.row >= e.top+height {
		e.top = e.row - height + 1
	}
	if e.col < e.left {
		e.left = e.col
	}
	if e.col >= e.left+width {
		e.left = e.col - width + 1
	}
}

// gutterWidth returns the line-number gutter width.
func (e *editor) gutterWidth() int {
	digits := 1
	for n := e.doc.LineCount(); n >= 10; n /= 10 {
		digits++
	}
	return digits + 1
}

// insertRune inserts a character at the cursor.
func (e *editor) insertRune(ch rune) {
	line := e.doc.Line(e.row)
	e.doc.SetLine(e.row, line[:e.col]+string(ch)+line[e.col:])
	e.col += len(string(ch))
}

// insertNewline splits the current line at the cursor.
func (e *editor) insertNewline() {
	line := e.doc.Line(e.row)
	e.doc.SetLine(e.row, line[:e.col])
	e.doc.InsertLine(e.row+1, line[e.col:])
	e.row++
	e.col = 0
}

// backspace deletes the character before the cursor, joining lines at
// column zero.
func (e *editor) backspace() {
	if e.col > 0 {
		line := e.doc.Line(e.row)
		_, size := utf8.DecodeLastRuneInString(line[:e.col])
		e.doc.SetLine(e.row, line[:e.col-size]+line[e.col:])
		e.col -= size
		return
	}
	if e.row == 0 {
		return
	}
	prev := e.doc.Line(e.row - 1)
	e.doc.SetLine(e.row-1, prev+e.doc.Line(e.row))
	e.doc.RemoveLine(e.row)
	e.row--
	e.col = len(prev)
}

// deleteForward deletes the character under the cursor.
func (e *editor) deleteForward() {
	line := e.doc.Line(e.row)
	if e.col < len(line) {
		_, size := utf8.DecodeRuneInString(line[e.col:])
		e.doc.SetLine(e.row, line[:e.col]+line[e.col+size:])
		return
	}
	if e.row+1 < e.doc.LineCount() {
		e.doc.SetLine(e.row, line+e.doc.Line(e.row+1))
		e.doc.RemoveLine(e.row + 1)
	}
}

// handleKey processes an editor key event. Returns true if handled.
func (e *editor) handleKey(ev *tcell.EventKey, r rect) bool {
	if e.doc == nil {
		return false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		e.row--
	case tcell.KeyDown:
		e.row++
	case tcell.KeyLeft:
		if e.col == 0 && e.row > 0 {
			e.row--
			e.col = len(e.doc.Line(e.row))
		} else {
			_, size := utf8.DecodeLastRuneInString(e.doc.Line(e.row)[:e.col])
			e.col -= size
		}
	case tcell.KeyRight:
		line := e.doc.Line(e.row)
		if e.col >= len(line) && e.row+1 < e.doc.LineCount() {
			e.row++
			e.col = 0
		} else {
			_, size := utf8.DecodeRuneInString(line[e.col:])
			e.col += size
		}
	case tcell.KeyHome:
		e.col = 0
	case tcell.KeyEnd:
		e.col = len(e.doc.Line(e.row))
	case tcell.KeyPgUp:
		e.row -= r.height()
	case tcell.KeyPgDn:
		e.row += r.height()
	case tcell.KeyEnter:
		e.insertNewline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace()
	case tcell.KeyDelete:
		e.deleteForward()
	case tcell.KeyTab:
		// Soft tabs.
		for i := 0; i < 4; i++ {
			e.insertRune(' ')
		}
	case tcell.KeyRune:
		e.insertRune(ev.Rune())
	default:
		return false
	}
	e.clampCursor()
	e.scrollIntoView(r)
	return true
}

// render draws the visible buffer region with highlighting.
func (e *editor) render(s tcell.Screen, r rect, focused bool) {
	if e.doc == nil {
		return
	}
	e.clampCursor()
	e.scrollIntoView(r)

	gutter := e.gutterWidth()

	// Lexer state is carried from the top of the buffer so multi-line
	// strings and comments survive scrolling.
	state := highlight.StateNormal
	if e.lexer != nil {
		for i := 0; i < e.top; i++ {
			_, state = e.lexer.Line(e.doc.Line(i), state)
		}
	}

	for y := r.Top; y < r.Bottom; y++ {
		fillRow(s, y, r, styleDefault)
		row := e.top + (y - r.Top)
		if row >= e.doc.LineCount() {
			continue
		}
		line := e.doc.Line(row)

		num := fmt.Sprintf("%*d ", gutter-1, row+1)
		drawText(s, r.Left, y, r, styleLineNum, num)

		var tokens []highlight.Token
		if e.lexer != nil {
			tokens, state = e.lexer.Line(line, state)
		}

		x := r.Left + gutter
		for i, ch := range line {
			if i < e.left {
				continue
			}
			if x >= r.Right {
				break
			}
			style := styleDefault
			for _, tok := range tokens {
				if i >= tok.Start && i < tok.End {
					style = tokenStyle(tok.Type)
					break
				}
			}
			s.SetContent(x, y, ch, nil, style)
			x++
		}
	}

	if focused {
		// Screen cells are one per rune, so the cursor x is the rune count
		// of the visible prefix, not the byte offset.
		cx := 0
		if line := e.doc.Line(e.row); e.left <= e.col && e.col <= len(line) {
			cx = utf8.RuneCountInString(line[e.left:e.col])
		}
		s.ShowCursor(r.Left+gutter+cx, r.Top+e.row-e.top)
	}
}
