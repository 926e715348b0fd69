package ui

import (
	"github.com/gdamore/tcell/v2"
)

// promptKind distinguishes the two modal prompts.
type promptKind uint8

const (
	promptNone promptKind = iota
	promptConfirm
	promptInput
)

// prompt is the one-line modal prompt shown above the status bar. While
// active it captures all key input.
type prompt struct {
	kind    promptKind
	message string
	input   string

	// onConfirm receives the yes/no answer.
	onConfirm func(yes bool)

	// onInput receives the entered text.
	onInput func(text string)
}

func (p *prompt) active() bool { return p.kind != promptNone }

// askConfirm opens a yes/no prompt. Escape cancels without calling back.
func (p *prompt) askConfirm(message string, fn func(yes bool)) {
	p.kind = promptConfirm
	p.message = message
	p.onConfirm = fn
}

// askInput opens a text input prompt with an initial value.
func (p *prompt) askInput(message, initial string, fn func(text string)) {
	p.kind = promptInput
	p.message = message
	p.input = initial
	p.onInput = fn
}

func (p *prompt) close() {
	p.kind = promptNone
	p.message = ""
	p.input = ""
	p.onConfirm = nil
	p.onInput = nil
}

// handleKey processes a key while the prompt is open.
func (p *prompt) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		p.close()
		return
	}

	switch p.kind {
	case promptConfirm:
		switch ev.Rune() {
		case 'y', 'Y':
			fn := p.onConfirm
			p.close()
			fn(true)
		case 'n', 'N':
			fn := p.onConfirm
			p.close()
			fn(false)
		}
	case promptInput:
		switch ev.Key() {
		case tcell.KeyEnter:
			fn, text := p.onInput, p.input
			p.close()
			if text != "" {
				fn(text)
			}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(p.input) > 0 {
				p.input = p.input[:len(p.input)-1]
			}
		case tcell.KeyCtrlU:
			p.input = ""
		case tcell.KeyRune:
			p.input += string(ev.Rune())
		}
	}
}

// render draws the prompt row.
func (p *prompt) render(s tcell.Screen, r rect) {
	fillRow(s, r.Top, r, stylePrompt)
	x := drawText(s, r.Left, r.Top, r, stylePrompt, p.message)
	if p.kind == promptInput {
		x = drawText(s, x+1, r.Top, r, stylePrompt, p.input)
		s.ShowCursor(x, r.Top)
	} else {
		drawText(s, x+1, r.Top, r, stylePrompt, "[y/n]")
	}
}
