package lsp

import (
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/format"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	return s.formatEdits(doc), nil
}

// formatEdits returns the edit that replaces doc with its canonical form.
// Documents with problems or comments are left alone, since formatting
// would drop the comments.
func (s *Server) formatEdits(doc *Document) []protocol.TextEdit {
	res := parser.ParseDocument(doc.Content, s.parserOpts...)
	if len(res.Diagnostics) > 0 || res.Statement == nil {
		return nil
	}
	if len(res.Comments) > 0 {
		s.logger.Debug("not formatting document with comments", "uri", doc.URI)
		return nil
	}

	text := format.Format(res.Statement, s.formatOpts...)
	if strings.HasSuffix(doc.Content, "\n") {
		text += "\n"
	}
	if text == doc.Content {
		return nil
	}
	return []protocol.TextEdit{{Range: doc.FullRange(), NewText: text}}
}
