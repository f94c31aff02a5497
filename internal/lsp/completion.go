package lsp

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	items := s.completionItems(doc, doc.PositionToOffset(params.Position))
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

// completionItems offers the identification variables and keywords that
// may be typed at offset.
func (s *Server) completionItems(doc *Document, offset int) []protocol.CompletionItem {
	c := parser.CompleteAt(doc.Content, offset, s.parserOpts...)
	words := c.Words()

	items := make([]protocol.CompletionItem, 0, len(words))
	for i, w := range words {
		kind := protocol.CompletionItemKindKeyword
		detail := "keyword"
		if slices.Contains(c.Variables, w) {
			kind = protocol.CompletionItemKindVariable
			detail = "identification variable"
		}
		// keep the order Words chose
		sortText := fmt.Sprintf("%04d", i)
		items = append(items, protocol.CompletionItem{
			Label:    w,
			Kind:     &kind,
			Detail:   &detail,
			SortText: &sortText,
		})
	}
	return items
}
