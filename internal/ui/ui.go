// Package ui implements the terminal front-end: a three-pane layout
// (workspace tree, editor, build console) driven by a single event loop.
// All application state is mutated on this loop's goroutine; background
// tasks reach it only through the post queue.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buildpad/internal/app"
	"github.com/dshills/buildpad/internal/explorer"
	"github.com/dshills/buildpad/internal/highlight"
	"github.com/dshills/buildpad/internal/task"
)

type focusArea uint8

const (
	focusExplorer focusArea = iota
	focusEditor
	focusConsole
)

// UI owns the terminal screen and the three panes.
type UI struct {
	screen tcell.Screen
	app    *app.Application

	tree    *explorer.Explorer
	files   explorerView
	editor  editor
	console consoleView
	prompt  prompt
	lexers  *highlight.Registry

	focus   focusArea
	status  string
	running string // label of the in-flight task, empty when idle

	post   chan func()
	wake   chan struct{}
	quit   bool
	ownScr bool
}

// New builds the UI on top of an application. A nil screen creates a
// real terminal screen; tests pass a simulation screen.
func New(a *app.Application, screen tcell.Screen) (*UI, error) {
	ownScr := false
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("creating screen: %w", err)
		}
		ownScr = true
	}

	tree, err := explorer.New(a.Workspace(), a.Config().Build.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading workspace %s: %w", a.Workspace(), err)
	}

	u := &UI{
		screen:  screen,
		app:     a,
		tree:    tree,
		console: consoleView{cons: a.Console()},
		lexers:  highlight.NewRegistry(),
		focus:   focusEditor,
		status:  "Ready",
		post:    make(chan func(), 64),
		wake:    make(chan struct{}, 1),
		ownScr:  ownScr,
	}
	u.files = explorerView{tree: tree, openFile: u.openFile}

	a.SetUIPost(func(fn func()) {
		u.post <- fn
		u.poke()
	})
	a.Console().SetNotify(u.poke)
	tree.SetNotify(u.poke)

	u.attachActive()
	return u, nil
}

// poke wakes the event loop without blocking.
func (u *UI) poke() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// attachActive points the editor at the active document.
func (u *UI) attachActive() {
	doc := u.app.Documents().Active()
	if doc == nil {
		doc = u.app.Documents().CreateScratch()
	}
	u.editor.setDocument(doc, u.lexers.ForFile(doc.Path))
}

// Run initializes the terminal and runs the event loop until quit.
func (u *UI) Run() error {
	if err := u.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer u.screen.Fini()
	u.screen.EnableMouse()

	if err := u.tree.Watch(); err != nil {
		u.app.Log().Warn("file watcher unavailable: %v", err)
	}
	defer u.tree.Close()

	events := make(chan tcell.Event, 16)
	quitPoll := make(chan struct{})
	go u.screen.ChannelEvents(events, quitPoll)
	defer close(quitPoll)

	// Console output is folded in on a fixed short interval so bursts of
	// chunks coalesce into one repaint.
	ticker := time.NewTicker(60 * time.Millisecond)
	defer ticker.Stop()

	u.render()
	for !u.quit {
		changed := true
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			u.handleEvent(ev)
		case fn := <-u.post:
			fn()
		case <-u.wake:
			u.app.Console().Drain()
		case <-ticker.C:
			changed = u.app.Console().Drain()
		}
		if changed {
			u.render()
		}
	}
	return nil
}

// handleEvent dispatches one terminal event.
func (u *UI) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventMouse:
		u.handleMouse(e)
	case *tcell.EventKey:
		u.handleKey(e)
	}
}

// handleMouse focuses the clicked pane and routes wheel scrolling.
func (u *UI) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	lay := u.layout()

	area := focusEditor
	switch {
	case y >= lay.console.Top:
		area = focusConsole
	case x < lay.explorer.Right:
		area = focusExplorer
	}

	if ev.Buttons()&tcell.Button1 != 0 {
		u.focus = area
	}
	if ev.Buttons()&tcell.WheelUp != 0 {
		u.wheel(area, -3, lay)
	}
	if ev.Buttons()&tcell.WheelDown != 0 {
		u.wheel(area, 3, lay)
	}
}

func (u *UI) wheel(area focusArea, delta int, lay paneLayout) {
	switch area {
	case focusConsole:
		u.console.scroll(-delta, lay.console.height())
	case focusEditor:
		u.editor.row += delta
		u.editor.clampCursor()
	case focusExplorer:
		u.files.selected += delta
	}
}

// handleKey routes a key press: prompt first, then global bindings,
// then the focused pane.
func (u *UI) handleKey(ev *tcell.EventKey) {
	if u.prompt.active() {
		u.prompt.handleKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		u.requestQuit()
		return
	case tcell.KeyCtrlW:
		u.focus = (u.focus + 1) % 3
		return
	case tcell.KeyCtrlO:
		u.prompt.askInput("Open file:", u.app.Workspace()+"/", func(path string) {
			u.openFile(path)
		})
		return
	case tcell.KeyCtrlS:
		u.saveActive(nil)
		return
	case tcell.KeyCtrlN:
		u.app.Documents().CreateScratch()
		u.attachActive()
		u.focus = focusEditor
		return
	case tcell.KeyCtrlL:
		u.app.Console().Clear()
		return
	case tcell.KeyF5:
		u.startTask("run")
		return
	case tcell.KeyF6:
		u.app.Documents().Next()
		u.attachActive()
		return
	case tcell.KeyF7:
		u.startTask("compile")
		return
	}

	lay := u.layout()
	switch u.focus {
	case focusExplorer:
		u.files.handleKey(ev, lay.explorer)
	case focusEditor:
		u.editor.handleKey(ev, lay.editor)
	case focusConsole:
		u.console.handleKey(ev, lay.console)
	}
}

// openFile opens a file into the editor.
func (u *UI) openFile(path string) {
	if _, err := u.app.OpenFile(path); err != nil {
		u.status = err.Error()
		return
	}
	u.attachActive()
	u.focus = focusEditor
	u.status = "Opened " + u.app.Documents().Active().Name
}

// saveActive saves the active document, prompting for a path on scratch
// buffers. then runs after a successful save.
func (u *UI) saveActive(then func()) {
	doc := u.app.Documents().Active()
	if doc == nil {
		return
	}
	if doc.IsScratch() {
		u.prompt.askInput("Save as:", u.app.Workspace()+"/", func(path string) {
			if err := u.app.SaveActiveAs(path); err != nil {
				u.status = err.Error()
				return
			}
			u.editor.lexer = u.lexers.ForFile(doc.Path)
			u.status = "Saved " + doc.Name
			if then != nil {
				then()
			}
		})
		return
	}
	if err := u.app.SaveActive(); err != nil {
		u.status = err.Error()
		return
	}
	u.status = "Saved " + doc.Name
	if then != nil {
		then()
	}
}

// startTask runs the save-check flow and dispatches a compile or run of
// the active document.
func (u *UI) startTask(label string) {
	if u.app.Busy() {
		u.status = "A task is already running"
		return
	}
	doc := u.app.Documents().Active()
	if doc == nil {
		return
	}

	if doc.IsScratch() {
		// Never been saved; a path is required before anything can run.
		u.saveActive(func() { u.dispatch(label) })
		return
	}
	if doc.IsModified() {
		u.prompt.askConfirm("Save changes before "+label+"?", func(yes bool) {
			if yes {
				u.saveActive(func() { u.dispatch(label) })
				return
			}
			// Run whatever is on disk.
			u.dispatch(label)
		})
		return
	}
	u.dispatch(label)
}

// dispatch hands the task to the dispatcher and tracks its lifetime.
func (u *UI) dispatch(label string) {
	done := func(r task.Run) {
		u.running = ""
		if r.Err != nil {
			u.status = capitalize(label) + " failed"
		} else {
			u.status = "Ready"
		}
		u.console.offset = 0 // snap back to the tail
	}

	var err error
	switch label {
	case "compile":
		err = u.app.CompileActive(done)
	default:
		err = u.app.RunActive(done)
	}
	if err != nil {
		if errors.Is(err, task.ErrBusy) {
			u.status = "A task is already running"
		} else {
			u.status = err.Error()
		}
		return
	}
	u.running = label
	u.status = ""
}

// requestQuit exits, confirming first when unsaved changes exist.
func (u *UI) requestQuit() {
	dirty := false
	for _, doc := range u.app.Documents().All() {
		if doc.IsModified() {
			dirty = true
			break
		}
	}
	if !dirty {
		u.quit = true
		return
	}
	u.prompt.askConfirm("Unsaved changes. Quit anyway?", func(yes bool) {
		if yes {
			u.quit = true
		}
	})
}

// paneLayout is the computed screen geometry.
type paneLayout struct {
	explorer rect
	editor   rect
	console  rect
	status   rect
}

// layout computes pane rects for the current screen size.
func (u *UI) layout() paneLayout {
	w, h := u.screen.Size()

	explW := w / 5
	if explW < 20 {
		explW = 20
	}
	if explW > 36 {
		explW = 36
	}
	consH := h / 4
	if consH < 5 {
		consH = 5
	}

	statusY := h - 1
	consTop := statusY - consH
	return paneLayout{
		explorer: rect{Left: 0, Top: 1, Right: explW, Bottom: consTop},
		editor:   rect{Left: explW + 1, Top: 1, Right: w, Bottom: consTop},
		console:  rect{Left: 0, Top: consTop + 1, Right: w, Bottom: statusY},
		status:   rect{Left: 0, Top: statusY, Right: w, Bottom: statusY + 1},
	}
}

// render draws the whole screen.
func (u *UI) render() {
	u.screen.HideCursor()
	w, _ := u.screen.Size()
	lay := u.layout()

	u.renderTitles(lay, w)
	u.files.render(u.screen, lay.explorer, u.focus == focusExplorer)
	for y := lay.explorer.Top; y < lay.explorer.Bottom; y++ {
		u.screen.SetContent(lay.explorer.Right, y, '│', nil, styleBorder)
	}
	u.editor.render(u.screen, lay.editor, u.focus == focusEditor)
	u.console.render(u.screen, lay.console)
	u.renderStatus(lay.status)

	if u.prompt.active() {
		u.prompt.render(u.screen, lay.status)
	}
	u.screen.Show()
}

// renderTitles draws the pane header row and the console separator.
func (u *UI) renderTitles(lay paneLayout, w int) {
	top := rect{Left: 0, Top: 0, Right: w, Bottom: 1}
	fillRow(u.screen, 0, top, styleBorder)
	drawText(u.screen, 1, 0, top, u.titleStyle(focusExplorer), " Files ")

	name := "(no file)"
	if doc := u.app.Documents().Active(); doc != nil {
		name = doc.Name
		if doc.IsModified() {
			name += " *"
		}
	}
	drawText(u.screen, lay.editor.Left+1, 0, top, u.titleStyle(focusEditor), " "+name+" ")

	sep := rect{Left: 0, Top: lay.console.Top - 1, Right: w, Bottom: lay.console.Top}
	for x := 0; x < w; x++ {
		u.screen.SetContent(x, sep.Top, '─', nil, styleBorder)
	}
	drawText(u.screen, 1, sep.Top, sep, u.titleStyle(focusConsole), " Console ")
}

func (u *UI) titleStyle(area focusArea) tcell.Style {
	if u.focus == area {
		return styleBorderHot
	}
	return styleBorder
}

// renderStatus draws the bottom status bar.
func (u *UI) renderStatus(r rect) {
	fillRow(u.screen, r.Top, r, styleStatus)

	left := u.status
	style := styleStatus
	if u.running != "" {
		left = "Running " + u.running + "..."
		style = styleStatusRun
	}
	drawText(u.screen, 1, r.Top, r, style, left)

	hints := "^O open  ^S save  F7 compile  F5 run  ^W pane  ^Q quit"
	x := r.Right - len(hints) - 1
	if x > 1+len(left)+2 {
		drawText(u.screen, x, r.Top, r, styleStatus, hints)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
