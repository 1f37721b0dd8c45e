// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Shelf catalog for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
)

const formatURI = "shelf://book-format"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalog.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Shelf",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_books",
		mcp.WithDescription("List books whose title, author or ISBN contains the query (case-insensitive). "+
			"An empty query lists the whole catalog in insertion order."),
		mcp.WithString("query", mcp.Description("Substring to search for")),
	), s.searchBooks)

	s.mcp.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Fetch one book by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Book id")),
	), s.getBook)

	createOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Add a book to the catalog. See the " + formatURI + " resource for field rules."),
	}, bookFields(mcp.Required())...)
	s.mcp.AddTool(mcp.NewTool("create_book", createOpts...), s.createBook)

	updateOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Change the given fields of an existing book; omitted fields are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Book id")),
	}, bookFields()...)
	s.mcp.AddTool(mcp.NewTool("update_book", updateOpts...), s.updateBook)

	s.mcp.AddTool(mcp.NewTool("delete_book",
		mcp.WithDescription("Remove a book from the catalog."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Book id")),
	), s.deleteBook)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Book Format",
			mcp.WithResourceDescription("Fields and rules of a catalog book."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

func bookFields(titleOpts ...mcp.PropertyOption) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("title", append(titleOpts, mcp.Description("Book title"))...),
		mcp.WithString("author", mcp.Description("Author name")),
		mcp.WithString("isbn", mcp.Description("ISBN")),
		mcp.WithNumber("year", mcp.Description("Publication year")),
		mcp.WithNumber("copies", mcp.Description("Copies on hand, 0 or more")),
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := s.svc.List(ctx, req.GetString("query", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(books)
}

func (s *Server) getBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.Get(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(b)
}

func (s *Server) createBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := bookInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.Create(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(b)
}

func (s *Server) updateBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := bookInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.Update(ctx, id, in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(b)
}

func (s *Server) deleteBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("deleted: " + id), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BookFormatContract,
		},
	}, nil
}

// bookInput reads tool arguments through the same JSON rules as the REST API,
// so numeric strings and unparseable numbers behave identically.
func bookInput(req mcp.CallToolRequest) (models.BookInput, error) {
	var in models.BookInput
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, err
	}
	return in, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("book not found")
	case errors.Is(err, apperr.ErrValidation):
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return mcp.NewToolResultError("invalid book: " + ve.Error())
		}
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
