// Package lsp implements a language server for JPQL query files. It keeps
// open documents in memory, publishes parse diagnostics as they change and
// answers completion, semantic token and formatting requests.
package lsp

import (
	"log/slog"

	"github.com/leapstack-labs/leapjpql/pkg/format"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // glsp logs through commonlog
)

const lsName = "jpql"

// Server implements the Language Server Protocol for JPQL.
type Server struct {
	version   string
	documents *DocumentStore

	parserOpts []parser.Option
	formatOpts []format.Option
	logger     *slog.Logger

	handler protocol.Handler
	server  *server.Server
}

// NewServer creates a server. The options apply to every parse and format
// the server performs. A nil logger discards log output.
func NewServer(version string, popts []parser.Option, fopts []format.Option, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		version:    version,
		documents:  NewDocumentStore(),
		parserOpts: popts,
		formatOpts: fopts,
		logger:     logger,
	}

	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentDidSave:            s.textDocumentDidSave,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		TextDocumentFormatting:         s.textDocumentFormatting,
	}
	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

// RunStdio serves the protocol over stdin and stdout until the client exits.
func (s *Server) RunStdio() error {
	s.logger.Info("jpql language server starting", "version", s.version)
	return s.server.RunStdio()
}

// Documents returns the store of open documents.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		s.logger.Debug("initialize", "client", params.ClientInfo.Name)
	}

	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     semantic.Legend(),
			TokenModifiers: []string{},
		},
		Full: true,
	}
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Debug("client initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	doc := s.documents.Open(item.URI, item.Text, item.Version)
	s.publishDiagnostics(ctx, doc)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		s.logger.Debug("change for unknown document", "uri", uri)
		return nil
	}

	content := doc.Content
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = applyChange(NewDocument(uri, content, 0), c)
		}
	}

	if doc = s.documents.Update(uri, content, params.TextDocument.Version); doc != nil {
		s.publishDiagnostics(ctx, doc)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.documents.Close(uri)
	if isQueryDocument(uri) {
		// clear what the editor still shows
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		return nil
	}
	if params.Text != nil {
		doc = s.documents.Update(uri, *params.Text, doc.Version)
	}
	if doc != nil {
		s.publishDiagnostics(ctx, doc)
	}
	return nil
}

// applyChange applies an incremental edit to doc and returns the new content.
func applyChange(doc *Document, c protocol.TextDocumentContentChangeEvent) string {
	if c.Range == nil {
		return c.Text
	}
	start := doc.PositionToOffset(c.Range.Start)
	end := doc.PositionToOffset(c.Range.End)
	if end < start {
		start, end = end, start
	}
	return doc.Content[:start] + c.Text + doc.Content[end:]
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
