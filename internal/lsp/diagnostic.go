package lsp

import (
	"path"
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "jpql"

// Diagnostic codes by kind.
const (
	CodeLexical = "E001"
	CodeSyntax  = "E002"
)

// queryExt is the file extension of documents the server diagnoses.
const queryExt = ".jpql"

func isQueryDocument(uri string) bool {
	return strings.EqualFold(path.Ext(uri), queryExt)
}

// publishDiagnostics parses the document and publishes its problems. An
// empty list is published for a valid document so stale markers go away.
func (s *Server) publishDiagnostics(ctx *glsp.Context, doc *Document) {
	if !isQueryDocument(doc.URI) {
		return
	}

	res := parser.ParseDocument(doc.Content, s.parserOpts...)
	s.logger.Debug("publishing diagnostics", "uri", doc.URI, "version", doc.Version, "count", len(res.Diagnostics))

	params := protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: toProtocolDiagnostics(doc, res.Diagnostics),
	}
	if doc.Version >= 0 {
		v := protocol.UInteger(doc.Version)
		params.Version = &v
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// toProtocolDiagnostics converts parser diagnostics to LSP diagnostics.
// The result is never nil.
func toProtocolDiagnostics(doc *Document, ds parser.Diagnostics) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		end := d.End.Offset
		if end < d.Offset {
			end = d.Offset
		}
		code := CodeSyntax
		if d.Kind == parser.Lexical {
			code = CodeLexical
		}
		source := diagnosticSource
		severity := protocol.DiagnosticSeverityError
		out = append(out, protocol.Diagnostic{
			Range:    doc.Range(d.Offset, end),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: code},
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}
