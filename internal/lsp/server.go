package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
)

// Server is an LSP server that recompiles a schema document on every
// open/change/save and publishes the resulting diagnostics back to the
// editor, entirely in-process.
//
// Grounded on cli/cmd/afterpiece/lsp/server.LSPServer/stdioConn, with
// go.lsp.dev/jsonrpc2 standing in for the teacher's internal, non-importable
// jsonrpc2 package (same header-framed stdio transport shape).
type Server struct {
	conn jsonrpc2.Conn

	mu        sync.Mutex
	checker   *Checker
	documents map[string]string // uri -> last known text
	hadDiags  map[string]bool
}

func NewServer() *Server {
	return &Server{
		checker:   NewChecker(),
		documents: make(map[string]string),
		hadDiags:  make(map[string]bool),
	}
}

// Start runs the server over stdio, blocking until the connection closes.
func (s *Server) Start(ctx context.Context) error {
	stream := jsonrpc2.NewStream(&stdioConn{in: os.Stdin, out: os.Stdout})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handle)
	<-conn.Done()
	return conn.Err()
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized", "shutdown", "exit":
		return reply(ctx, nil, nil)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		return reply(ctx, nil, fmt.Errorf("method not found: %s", req.Method()))
	}
}

func unmarshalParams(req jsonrpc2.Request, v any) error {
	params := req.Params()
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, v)
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params InitializeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    SyncFull,
				Save:      &SaveOptions{IncludeText: true},
			},
		},
		ServerInfo: &ServerInfo{Name: "smithc-lsp", Version: "0.1.0"},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	s.runCheck(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.ContentChanges) > 0 {
		// Sync mode is Full: the last change event carries the whole document.
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.setDocument(params.TextDocument.URI, text)
		s.runCheck(ctx, params.TextDocument.URI)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidSaveTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	if params.Text != "" {
		s.setDocument(params.TextDocument.URI, params.Text)
	}
	s.runCheck(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	delete(s.hadDiags, params.TextDocument.URI)
	s.mu.Unlock()
	s.publish(ctx, params.TextDocument.URI, nil)
	return reply(ctx, nil, nil)
}

func (s *Server) setDocument(uri, text string) {
	s.mu.Lock()
	s.documents[uri] = text
	s.mu.Unlock()
}

func (s *Server) runCheck(ctx context.Context, uri string) {
	s.mu.Lock()
	text := s.documents[uri]
	s.mu.Unlock()

	diags := s.checker.Check(text)

	s.mu.Lock()
	had := s.hadDiags[uri]
	s.hadDiags[uri] = len(diags) > 0
	s.mu.Unlock()

	if len(diags) > 0 || had {
		s.publish(ctx, uri, diags)
	}
}

func (s *Server) publish(ctx context.Context, uri string, diags []Diagnostic) {
	if s.conn == nil {
		return
	}
	if diags == nil {
		diags = []Diagnostic{}
	}
	_ = s.conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// stdioConn adapts stdin/stdout to the net.Conn shape go.lsp.dev/jsonrpc2's
// stream constructor expects, without actually closing either stream.
type stdioConn struct {
	in  *os.File
	out *os.File
}

func (c *stdioConn) Read(b []byte) (int, error)  { return c.in.Read(b) }
func (c *stdioConn) Write(b []byte) (int, error) { return c.out.Write(b) }
func (c *stdioConn) Close() error                { return nil }

func (c *stdioConn) LocalAddr() net.Addr                { return stdioAddr{} }
func (c *stdioConn) RemoteAddr() net.Addr               { return stdioAddr{} }
func (c *stdioConn) SetDeadline(time.Time) error        { return nil }
func (c *stdioConn) SetReadDeadline(time.Time) error    { return nil }
func (c *stdioConn) SetWriteDeadline(time.Time) error   { return nil }

type stdioAddr struct{}

func (stdioAddr) Network() string { return "stdio" }
func (stdioAddr) String() string  { return "stdio" }
