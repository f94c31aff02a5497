package lsp

import (
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	res := parser.ParseDocument(doc.Content, s.parserOpts...)
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(doc, semantic.FromResult(res))}, nil
}

// encodeSemanticTokens packs tokens into the relative five-integer form:
// line delta, start delta, length, type, modifiers. Tokens spanning lines
// are split per line. Tokens must be sorted by offset.
func encodeSemanticTokens(doc *Document, tokens []semantic.Token) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	emit := func(start, end int, kind semantic.Kind) {
		if end <= start {
			return
		}
		pos := doc.OffsetToPosition(start)
		length := utf16Len(doc.Content[start:end])

		deltaChar := pos.Character
		if pos.Line == prevLine {
			deltaChar -= prevChar
		}
		data = append(data, pos.Line-prevLine, deltaChar, length, protocol.UInteger(kind), 0) //nolint:gosec // G115: kinds are small
		prevLine, prevChar = pos.Line, pos.Character
	}

	for _, t := range tokens {
		start, end := t.Span.Start.Offset, t.Span.End.Offset
		if start < 0 || end > len(doc.Content) {
			continue
		}
		for start < end {
			line := int(doc.OffsetToPosition(start).Line)
			stop := min(end, doc.lineEnd(line))
			emit(start, stop, t.Kind)
			if line+1 >= len(doc.Lines) {
				break
			}
			start = doc.Lines[line+1]
		}
	}
	return data
}
