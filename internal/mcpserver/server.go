// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the card collection for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/models"
)

// Server wraps the MCP server with Cardex tools.
type Server struct {
	mcp *server.MCPServer
	svc *cards.Service
}

// New creates a new MCP server with all Cardex tools registered.
func New(svc *cards.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Cardex",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List all digitized business card contacts (id, name, company, title)."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Read the full contact record for a card, excluding image payloads."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id (e.g. card_1712000000000)")),
	), s.getContact)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Full-text search across contact names, companies, and other fields."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("export_vcard",
		mcp.WithDescription("Export a contact as a vCard 3.0 document. "+
			"The output follows the format described by the cardex://vcard-format resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id to export")),
	), s.exportVCard)

	// Resource: vCard export contract.
	s.mcp.AddResource(
		mcp.NewResource("cardex://vcard-format", "vCard Export Format",
			mcp.WithResourceDescription("The vCard 3.0 directive set and ordering Cardex exports use."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readVCardFormatResource,
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

// contactView strips the image payloads, which are far too large for tool
// output.
type contactView struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

func viewOf(rec models.CardRecord) contactView {
	return contactView{
		ID:      rec.ID,
		Name:    rec.Name,
		Company: rec.Company,
		Title:   rec.Title,
		Phone:   rec.Phone,
		Email:   rec.Email,
		Website: rec.Website,
		Address: rec.Address,
	}
}

func (s *Server) listContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := s.svc.List(ctx)
	if len(recs) == 0 {
		return mcp.NewToolResultText("no contacts"), nil
	}

	var lines []string
	for _, rec := range recs {
		line := rec.ID + ": " + rec.Name
		if rec.Company != "" {
			line += " (" + rec.Company + ")"
		}
		if rec.Title != "" {
			line += " - " + rec.Title
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(viewOf(rec), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportVCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, body, err := s.svc.ExportVCard(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) readVCardFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "cardex://vcard-format",
			MIMEType: "text/markdown",
			Text:     VCardFormatContract,
		},
	}, nil
}
