package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buildpad/internal/explorer"
)

// explorerView renders the workspace tree pane.
type explorerView struct {
	tree     *explorer.Explorer
	selected int
	top      int

	// openFile is called when a file entry is activated.
	openFile func(path string)
}

// clamp keeps the selection inside the visible list.
func (v *explorerView) clamp(count int) {
	if v.selected >= count {
		v.selected = count - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

// handleKey processes explorer pane keys. Returns true if handled.
func (v *explorerView) handleKey(ev *tcell.EventKey, r rect) bool {
	nodes := v.tree.Visible()
	v.clamp(len(nodes))

	switch ev.Key() {
	case tcell.KeyUp:
		v.selected--
	case tcell.KeyDown:
		v.selected++
	case tcell.KeyHome:
		v.selected = 0
	case tcell.KeyEnd:
		v.selected = len(nodes) - 1
	case tcell.KeyPgUp:
		v.selected -= r.height()
	case tcell.KeyPgDn:
		v.selected += r.height()
	case tcell.KeyEnter:
		if v.selected < len(nodes) {
			node := nodes[v.selected]
			if node.IsDir {
				v.tree.Toggle(v.selected)
			} else if v.openFile != nil {
				v.openFile(node.Path)
			}
		}
	case tcell.KeyRune:
		if ev.Rune() == 'r' {
			v.tree.Refresh()
			break
		}
		return false
	default:
		return false
	}
	v.clamp(len(v.tree.Visible()))
	return true
}

// render draws the tree with the current selection.
func (v *explorerView) render(s tcell.Screen, r rect, focused bool) {
	nodes := v.tree.Visible()
	v.clamp(len(nodes))

	height := r.height()
	if v.selected < v.top {
		v.top = v.selected
	}
	if v.selected >= v.top+height {
		v.top = v.selected - height + 1
	}

	y := r.Top
	for i := v.top; i < len(nodes) && y < r.Bottom; i++ {
		node := nodes[i]
		style := styleDefault
		if node.IsDir {
			style = styleDir
		}
		if focused && i == v.selected {
			style = styleSelected
		}

		fillRow(s, y, r, styleDefault)
		x := r.Left + node.Depth*2
		if node.IsDir {
			marker := "+ "
			if node.Expanded {
				marker = "- "
			}
			x = drawText(s, x, y, r, style, marker)
		} else {
			x = drawText(s, x, y, r, style, "  ")
		}
		drawText(s, x, y, r, style, node.Name)
		y++
	}
	for ; y < r.Bottom; y++ {
		fillRow(s, y, r, styleDefault)
	}
}
