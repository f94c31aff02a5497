package lsp

import (
	"sort"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document represents an open text document in the editor.
// A Document is never modified once stored; updates replace it.
type Document struct {
	URI     string // Document URI (file:///path/to/query.jpql)
	Content string // Full document content
	Version int32  // Version number, incremented on each change
	Lines   []int  // Byte offsets of line starts for fast position lookups
}

// NewDocument creates a document and indexes its lines.
func NewDocument(uri, content string, version int32) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
	}
}

// DocumentStore manages open documents in memory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri string, content string, version int32) *Document {
	doc := NewDocument(uri, content, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces the content of an open document. It returns nil when the
// document is not open.
func (s *DocumentStore) Update(uri string, content string, version int32) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uri]; !ok {
		return nil
	}
	doc := NewDocument(uri, content, version)
	s.documents[uri] = doc
	return doc
}

// List returns all open document URIs, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0} // First line starts at offset 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// lineEnd returns the byte offset just past the last character of line,
// excluding its line break.
func (d *Document) lineEnd(line int) int {
	end := len(d.Content)
	if line+1 < len(d.Lines) {
		end = d.Lines[line+1] - 1
	}
	if end > d.Lines[line] && d.Content[end-1] == '\r' {
		end--
	}
	return end
}

// PositionToOffset converts a Position to a byte offset in the document.
// Characters count UTF-16 code units. A character past the end of its line
// maps to the line end.
func (d *Document) PositionToOffset(pos protocol.Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset, end := d.Lines[line], d.lineEnd(line)
	for units := uint32(0); offset < end; {
		r, size := utf8.DecodeRuneInString(d.Content[offset:end])
		n := runeUnits(r)
		if units+n > pos.Character {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) protocol.Position {
	if d == nil || len(d.Lines) == 0 {
		return protocol.Position{}
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}

	line := sort.Search(len(d.Lines), func(i int) bool { return d.Lines[i] > offset }) - 1
	return protocol.Position{
		Line:      uint32(line), //nolint:gosec // G115: line index is non-negative
		Character: utf16Len(d.Content[d.Lines[line]:offset]),
	}
}

// Range converts the byte range [start, end) to a protocol range.
func (d *Document) Range(start, end int) protocol.Range {
	return protocol.Range{Start: d.OffsetToPosition(start), End: d.OffsetToPosition(end)}
}

// FullRange covers the whole document.
func (d *Document) FullRange() protocol.Range {
	return d.Range(0, len(d.Content))
}

// GetLine returns the content of a specific line, without its line break.
func (d *Document) GetLine(line int) string {
	if d == nil || line < 0 || line >= len(d.Lines) {
		return ""
	}
	return d.Content[d.Lines[line]:d.lineEnd(line)]
}

// utf16Len counts the UTF-16 code units of s.
func utf16Len(s string) uint32 {
	var n uint32
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) uint32 {
	if utf16.RuneLen(r) == 2 {
		return 2
	}
	return 1
}
