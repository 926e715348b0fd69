// Package explorer provides the workspace file tree shown in the left
// pane: lazily loaded directory nodes with expand/collapse state, kept
// fresh by a filesystem watcher.
package explorer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ignoredNames are directory entries hidden from the tree.
var ignoredNames = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
}

// Node is a single entry in the file tree.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Depth    int
	Expanded bool

	children []*Node
	loaded   bool
}

// Explorer maintains the workspace file tree. All methods are safe for
// concurrent use; the watcher goroutine refreshes directories in the
// background and signals the UI through the notify callback.
type Explorer struct {
	mu       sync.Mutex
	root     *Node
	watcher  *fsnotify.Watcher
	notify   func()
	buildDir string
	done     chan struct{}
}

// New creates an explorer rooted at dir with the root level expanded.
// Entries named buildDir are hidden alongside the built-in ignore set.
func New(dir, buildDir string) (*Explorer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	e := &Explorer{
		root: &Node{
			Name:     filepath.Base(abs),
			Path:     abs,
			IsDir:    true,
			Depth:    -1,
			Expanded: true,
		},
		buildDir: buildDir,
		done:     make(chan struct{}),
	}

	e.mu.Lock()
	err = e.load(e.root)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SetNotify registers the callback invoked after a background refresh.
// It may be called from the watcher goroutine and must not block.
func (e *Explorer) SetNotify(fn func()) {
	e.mu.Lock()
	e.notify = fn
	e.mu.Unlock()
}

// Watch starts the filesystem watcher. Without it the tree only changes
// through Refresh and Toggle.
func (e *Explorer) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.watcher = w
	paths := e.expandedDirs(e.root, nil)
	e.mu.Unlock()

	for _, p := range paths {
		// Best effort: a directory may vanish between listing and watching.
		_ = w.Add(p)
	}

	go e.watchLoop(w)
	return nil
}

func (e *Explorer) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				e.refreshDir(filepath.Dir(ev.Name))
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		case <-e.done:
			return
		}
	}
}

// refreshDir reloads the node for dir, if it is present and expanded.
func (e *Explorer) refreshDir(dir string) {
	e.mu.Lock()
	node := e.find(e.root, dir)
	if node != nil && node.Expanded {
		_ = e.load(node)
	}
	notify := e.notify
	e.mu.Unlock()

	if node != nil && notify != nil {
		notify()
	}
}

// Close stops the watcher.
func (e *Explorer) Close() {
	close(e.done)
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

// Root returns the workspace directory.
func (e *Explorer) Root() string {
	return e.root.Path
}

// Visible returns the flattened tree in render order. The root itself is
// not included. The returned nodes are snapshots.
func (e *Explorer) Visible() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			out = append(out, *c)
			if c.IsDir && c.Expanded {
				walk(c)
			}
		}
	}
	walk(e.root)
	return out
}

// Toggle expands or collapses the directory at index i of the visible
// list. Non-directories are ignored. Returns true if the tree changed.
func (e *Explorer) Toggle(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	node := e.visibleAt(i)
	if node == nil || !node.IsDir {
		return false
	}

	if node.Expanded {
		node.Expanded = false
		if e.watcher != nil {
			_ = e.watcher.Remove(node.Path)
		}
		return true
	}

	if err := e.load(node); err != nil {
		return false
	}
	node.Expanded = true
	if e.watcher != nil {
		_ = e.watcher.Add(node.Path)
	}
	return true
}

// Refresh reloads every expanded directory.
func (e *Explorer) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsDir || !n.Expanded {
			return
		}
		_ = e.load(n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(e.root)
}

// visibleAt resolves index i of the flattened view to its node.
func (e *Explorer) visibleAt(i int) *Node {
	idx := 0
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		for _, c := range n.children {
			if idx == i {
				return c
			}
			idx++
			if c.IsDir && c.Expanded {
				if found := walk(c); found != nil {
					return found
				}
			}
		}
		return nil
	}
	return walk(e.root)
}

// find locates the node for path among expanded directories.
func (e *Explorer) find(n *Node, path string) *Node {
	if n.Path == path {
		return n
	}
	if !n.IsDir || !n.Expanded {
		return nil
	}
	for _, c := range n.children {
		if found := e.find(c, path); found != nil {
			return found
		}
	}
	return nil
}

// expandedDirs collects the paths of all expanded directories.
func (e *Explorer) expandedDirs(n *Node, out []string) []string {
	if n.IsDir && n.Expanded {
		out = append(out, n.Path)
		for _, c := range n.children {
			out = e.expandedDirs(c, out)
		}
	}
	return out
}

// load reads dir contents into node.children, preserving the expansion
// state of directories that survive the reload.
func (e *Explorer) load(node *Node) error {
	entries, err := os.ReadDir(node.Path)
	if err != nil {
		return err
	}

	prev := make(map[string]*Node, len(node.children))
	for _, c := range node.children {
		prev[c.Name] = c
	}

	children := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if e.ignored(name) {
			continue
		}
		if old, ok := prev[name]; ok && old.IsDir == entry.IsDir() {
			children = append(children, old)
			continue
		}
		children = append(children, &Node{
			Name:  name,
			Path:  filepath.Join(node.Path, name),
			IsDir: entry.IsDir(),
			Depth: node.Depth + 1,
		})
	}

	sort.SliceStable(children, func(i, j int) bool {
		if children[i].IsDir != children[j].IsDir {
			return children[i].IsDir
		}
		return strings.ToLower(children[i].Name) < strings.ToLower(children[j].Name)
	})

	node.children = children
	node.loaded = true
	return nil
}

func (e *Explorer) ignored(name string) bool {
	if ignoredNames[name] {
		return true
	}
	return e.buildDir != "" && name == e.buildDir
}
