package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buildpad/internal/console"
	"github.com/dshills/buildpad/internal/highlight"
)

// Styles for the chrome and the two text panes.
var (
	styleDefault   = tcell.StyleDefault
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorderHot = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleStatusRun = tcell.StyleDefault.Reverse(true).Foreground(tcell.ColorYellow).Bold(true)
	stylePrompt    = tcell.StyleDefault.Reverse(true)
	styleSelected  = tcell.StyleDefault.Reverse(true)
	styleDir       = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleLineNum   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// tagStyle maps console tags to their colors: stdout white, stderr red,
// system messages blue.
func tagStyle(tag console.Tag) tcell.Style {
	switch tag {
	case console.TagStderr:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case console.TagSystem:
		return tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue)
	default:
		return tcell.StyleDefault
	}
}

// tokenStyle maps highlight token types to editor colors.
func tokenStyle(typ highlight.TokenType) tcell.Style {
	switch typ {
	case highlight.TokenComment:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case highlight.TokenString:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	case highlight.TokenNumber:
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	case highlight.TokenKeyword:
		return tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	case highlight.TokenTypeName:
		return tcell.StyleDefault.Foreground(tcell.ColorTeal)
	case highlight.TokenBuiltin:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case highlight.TokenConstant:
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	case highlight.TokenPreproc:
		return tcell.StyleDefault.Foreground(tcell.ColorViolet)
	default:
		return tcell.StyleDefault
	}
}

// rect is a screen region, Right and Bottom exclusive.
type rect struct {
	Left, Top, Right, Bottom int
}

func (r rect) width() int  { return r.Right - r.Left }
func (r rect) height() int { return r.Bottom - r.Top }

// drawText writes a string clipped to the rect row, returning the next x.
func drawText(s tcell.Screen, x, y int, r rect, style tcell.Style, text string) int {
	for _, ch := range text {
		if x >= r.Right {
			break
		}
		s.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// fillRow paints a full row of the rect with the style.
func fillRow(s tcell.Screen, y int, r rect, style tcell.Style) {
	for x := r.Left; x < r.Right; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}
