package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/testutil"
)

func testServer(t *testing.T) (*Server, *cards.Service) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := cards.NewService(testutil.TestStore(t), testutil.TestIndex(t), nil, logger)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_contacts":
		result, err = srv.listContacts(ctx, req)
	case "get_contact":
		result, err = srv.getContact(ctx, req)
	case "search_contacts":
		result, err = srv.searchContacts(ctx, req)
	case "export_vcard":
		result, err = srv.exportVCard(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedContact(t *testing.T, svc *cards.Service) {
	t.Helper()
	svc.Save(context.Background(), models.CardRecord{
		ID:         "card_1",
		Name:       "Ana Silva",
		Company:    "Acme Corp",
		Title:      "CTO",
		Email:      "ana@acme.test",
		FrontImage: "HUGE-BASE64-BLOB",
	})
}

func TestListContactsEmpty(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "list_contacts", nil)
	if got := resultText(res); got != "no contacts" {
		t.Errorf("result = %q", got)
	}
}

func TestListContacts(t *testing.T) {
	srv, svc := testServer(t)
	seedContact(t, svc)

	res := callTool(t, srv, "list_contacts", nil)
	text := resultText(res)
	if !strings.Contains(text, "card_1: Ana Silva (Acme Corp) - CTO") {
		t.Errorf("result = %q", text)
	}
}

func TestGetContactStripsImages(t *testing.T) {
	srv, svc := testServer(t)
	seedContact(t, svc)

	res := callTool(t, srv, "get_contact", map[string]interface{}{"id": "card_1"})
	text := resultText(res)
	if !strings.Contains(text, `"name": "Ana Silva"`) {
		t.Errorf("result = %q", text)
	}
	if strings.Contains(text, "HUGE-BASE64-BLOB") {
		t.Error("image payload leaked into tool output")
	}
}

func TestGetContactMissing(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "get_contact", map[string]interface{}{"id": "ghost"})
	if !res.IsError {
		t.Error("expected error result")
	}
}

func TestSearchContacts(t *testing.T) {
	srv, svc := testServer(t)
	seedContact(t, svc)

	res := callTool(t, srv, "search_contacts", map[string]interface{}{"query": "Acme"})
	if text := resultText(res); !strings.Contains(text, "card_1") {
		t.Errorf("result = %q", text)
	}
}

func TestExportVCard(t *testing.T) {
	srv, svc := testServer(t)
	seedContact(t, svc)

	res := callTool(t, srv, "export_vcard", map[string]interface{}{"id": "card_1"})
	text := resultText(res)
	if !strings.HasPrefix(text, "BEGIN:VCARD\nVERSION:3.0\n") {
		t.Errorf("result = %q", text)
	}
	if !strings.Contains(text, "FN:Ana Silva\n") {
		t.Errorf("missing FN line in %q", text)
	}
}

func TestVCardFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readVCardFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "BEGIN:VCARD") {
		t.Error("contract missing vCard skeleton")
	}
}
