// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the reading list as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/ui"
)

// Server wraps the MCP server with the reading-list tools.
type Server struct {
	mcp   *server.MCPServer
	store ui.BookStore
	disp  *ui.Dispatcher
}

// bookView is the JSON shape returned by the tools.
type bookView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Status     string `json:"status"`
	NextAction string `json:"next_action"`
	AddedDate  string `json:"added_date"`
}

// New creates a new MCP server. Mutating tools go through disp so they
// behave exactly like the web and terminal surfaces.
func New(store ui.BookStore, disp *ui.Dispatcher, version string) *Server {
	s := &Server{store: store, disp: disp}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List books in the reading list, in the order they were added."),
		mcp.WithString("filter",
			mcp.Description("Status filter"),
			mcp.Enum(models.FilterAllToken, "to-read", "reading", "completed"),
		),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("add_book",
		mcp.WithDescription("Add a book to the reading list. New books start as to-read."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Book title")),
		mcp.WithString("author", mcp.Required(), mcp.Description("Book author")),
	), s.addBook)

	s.mcp.AddTool(mcp.NewTool("advance_book",
		mcp.WithDescription("Move a book to the next status: to-read -> reading -> completed -> to-read."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Book id")),
	), s.advanceBook)

	s.mcp.AddTool(mcp.NewTool("delete_book",
		mcp.WithDescription("Delete a book. Without confirm=true the book is only looked up; "+
			"ask the user before confirming."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Book id")),
		mcp.WithBoolean("confirm", mcp.Description("Set to true to actually delete")),
	), s.deleteBook)

	s.mcp.AddTool(mcp.NewTool("get_lifecycle",
		mcp.WithDescription("Returns the status cycle and tool rules. "+
			"Same content as the "+lifecycleURI+" resource."),
	), s.getLifecycle)

	s.mcp.AddResource(
		mcp.NewResource(lifecycleURI, "Reading lifecycle",
			mcp.WithResourceDescription("Book statuses, their order, and the rules the tools follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLifecycleResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func toView(b models.Book) bookView {
	return bookView{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Status:     b.Status.String(),
		NextAction: b.Status.ActionLabel(),
		AddedDate:  b.AddedDate.Format(time.RFC3339),
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

// intentError turns a failed intent into a tool error carrying the same
// message a user would see as a notice.
func intentError(res ui.Result, err error) *mcp.CallToolResult {
	if res.Notice != nil {
		return mcp.NewToolResultError(res.Notice.Message)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := models.ParseFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	books := s.store.Filter(ctx, f)
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, toView(b))
	}
	return jsonResult(out), nil
}

func (s *Server) addBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author, err := req.RequireString("author")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.disp.Dispatch(ctx, ui.Intent{Action: ui.ActionAdd, Title: title, Author: author})
	if err != nil {
		return intentError(res, err), nil
	}
	return jsonResult(toView(*res.Book)), nil
}

func (s *Server) advanceBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.disp.Dispatch(ctx, ui.Intent{Action: ui.ActionAdvance, ID: id})
	if err != nil {
		return intentError(res, err), nil
	}
	return jsonResult(toView(*res.Book)), nil
}

func (s *Server) deleteBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confirm := req.GetBool("confirm", false)

	res, err := s.disp.Dispatch(ctx, ui.Intent{Action: ui.ActionDelete, ID: id, Confirmed: confirm})
	switch {
	case errors.Is(err, apperr.ErrConfirmationRequired):
		return mcp.NewToolResultText(fmt.Sprintf(
			"not deleted: confirm deletion of %q by %s by calling delete_book again with confirm=true",
			res.Pending.Title, res.Pending.Author)), nil
	case err != nil:
		return intentError(res, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", res.Book.ID)), nil
}

func (s *Server) getLifecycle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LifecycleDoc()), nil
}

func (s *Server) readLifecycleResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      lifecycleURI,
			MIMEType: "text/markdown",
			Text:     LifecycleDoc(),
		},
	}, nil
}
