package app

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Document represents an open file and its edit buffer. A Document is
// owned by the UI goroutine: all mutation happens there. Background tasks
// only ever receive the resolved path snapshot, never the Document.
type Document struct {
	// Path is the absolute file path (empty for untitled buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	// lines is the edit buffer, one entry per line.
	lines []string

	// modified indicates unsaved changes.
	modified atomic.Bool
}

// NewDocument creates a document from file content. Invalid UTF-8 is
// replaced rather than rejected, matching a permissive open policy.
func NewDocument(path string, content []byte) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}

	return &Document{
		Path:  path,
		Name:  name,
		lines: splitLines(strings.ToValidUTF8(string(content), "�")),
	}
}

// NewScratchDocument creates a new untitled document.
func NewScratchDocument() *Document {
	return &Document{
		Name:  "Untitled",
		lines: []string{""},
	}
}

// splitLines splits content into buffer lines. An empty buffer still has
// one empty line so the cursor has somewhere to be.
func splitLines(content string) []string {
	if content == "" {
		return []string{""}
	}
	lines := strings.Split(content, "\n")
	// A trailing newline produces a phantom empty element; keep it, it is
	// the line the cursor lands on at EOF.
	return lines
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// IsScratch returns true if this is an untitled buffer with no path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// LineCount returns the number of buffer lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns buffer line i, or "" when out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// SetLine replaces buffer line i and marks the document modified.
func (d *Document) SetLine(i int, text string) {
	if i < 0 || i >= len(d.lines) {
		return
	}
	d.lines[i] = text
	d.modified.Store(true)
}

// InsertLine inserts a line before index i and marks the document
// modified. i == LineCount appends.
func (d *Document) InsertLine(i int, text string) {
	if i < 0 || i > len(d.lines) {
		return
	}
	d.lines = append(d.lines, "")
	copy(d.lines[i+1:], d.lines[i:])
	d.lines[i] = text
	d.modified.Store(true)
}

// RemoveLine deletes line i and marks the document modified. The last
// remaining line is cleared instead of removed.
func (d *Document) RemoveLine(i int) {
	if i < 0 || i >= len(d.lines) {
		return
	}
	if len(d.lines) == 1 {
		d.lines[0] = ""
	} else {
		d.lines = append(d.lines[:i], d.lines[i+1:]...)
	}
	d.modified.Store(true)
}

// Content returns the full buffer content.
func (d *Document) Content() string {
	return strings.Join(d.lines, "\n")
}

// Save writes the buffer content verbatim to the document's path and
// clears the modified flag.
func (d *Document) Save() error {
	if d.Path == "" {
		return ErrUntitled
	}
	if err := os.WriteFile(d.Path, []byte(d.Content()), 0o644); err != nil {
		return NewOperationError("save", d.Path, err)
	}
	d.modified.Store(false)
	return nil
}

// SaveAs writes the buffer to a new path and adopts it.
func (d *Document) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewOperationError("save", path, err)
	}
	if err := os.WriteFile(abs, []byte(d.Content()), 0o644); err != nil {
		return NewOperationError("save", abs, err)
	}
	d.Path = abs
	d.Name = filepath.Base(abs)
	d.modified.Store(false)
	return nil
}

// DocumentManager manages all open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document // path -> document
	active    *Document
	order     []string
	counter   int
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
	}
}

// Open opens a document from a file, returning the existing document if
// it is already open.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, exists := dm.documents[absPath]; exists {
		dm.active = doc
		return doc, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, NewOperationError("open", absPath, err)
	}

	doc := NewDocument(absPath, content)
	dm.documents[absPath] = doc
	dm.order = append(dm.order, absPath)
	dm.active = doc

	return doc, nil
}

// CreateScratch creates a new untitled document and makes it active.
func (dm *DocumentManager) CreateScratch() *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.counter++
	doc := NewScratchDocument()
	if dm.counter > 1 {
		doc.Name = "Untitled-" + itoa(dm.counter)
	}

	key := scratchKey(dm.counter)
	dm.documents[key] = doc
	dm.order = append(dm.order, key)
	dm.active = doc

	return doc
}

// SaveAs saves a document under a new path and re-keys the manager's
// index to the adopted absolute path, so a later Open of that path finds
// the same document instead of loading a duplicate.
func (dm *DocumentManager) SaveAs(doc *Document, path string) error {
	if err := doc.SaveAs(path); err != nil {
		return err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	// Drop any stale entry already indexed under the adopted path.
	if other, exists := dm.documents[doc.Path]; exists && other != doc {
		delete(dm.documents, doc.Path)
		for i, p := range dm.order {
			if p == doc.Path {
				dm.order = append(dm.order[:i], dm.order[i+1:]...)
				break
			}
		}
	}

	for i, key := range dm.order {
		if dm.documents[key] == doc {
			delete(dm.documents, key)
			dm.documents[doc.Path] = doc
			dm.order[i] = doc.Path
			break
		}
	}
	return nil
}

// Close closes a document by path.
func (dm *DocumentManager) Close(path string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, exists := dm.documents[path]
	if !exists {
		return ErrDocumentNotFound
	}

	delete(dm.documents, path)
	for i, p := range dm.order {
		if p == path {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if dm.active == doc {
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		} else {
			dm.active = nil
		}
	}

	return nil
}

// Active returns the currently active document.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// Get returns a document by path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, exists := dm.documents[path]
	return doc, exists
}

// All returns all open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.documents))
	for _, path := range dm.order {
		if doc, exists := dm.documents[path]; exists {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// Next activates and returns the next document in open order.
func (dm *DocumentManager) Next() *Document {
	return dm.cycle(1)
}

// Previous activates and returns the previous document in open order.
func (dm *DocumentManager) Previous() *Document {
	return dm.cycle(-1)
}

// cycle moves the active document by delta with wraparound.
func (dm *DocumentManager) cycle(delta int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(dm.order) == 0 || dm.active == nil {
		return dm.active
	}

	idx := -1
	for i, path := range dm.order {
		if dm.documents[path] == dm.active {
			idx = i
			break
		}
	}
	if idx == -1 {
		return dm.active
	}

	next := (idx + delta + len(dm.order)) % len(dm.order)
	dm.active = dm.documents[dm.order[next]]
	return dm.active
}

// scratchKey generates a map key for untitled buffers.
func scratchKey(n int) string {
	return "::scratch::" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
