package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/mddocs/service"
	"github.com/foomo/mddocs/store"
)

func newTestService(t *testing.T) service.Service {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return service.NewService(st, service.Settings{}, nil)
}

func callRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := NewServer(newTestService(t))
	require.NotNil(t, server)
}

func TestCreateGetAndListDocuments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	createArgs := CreateDocumentRequest{FilePath: "guides/setup", Content: "# Setup"}
	result, err := getCreateDocumentHandler(svc)(ctx, callRequest("create_document", createArgs), createArgs)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.JSONEq(t, `{"success":true,"path":"/guides/setup"}`, resultText(t, result))

	getArgs := GetDocumentRequest{Slug: "guides/setup"}
	result, err = getGetDocumentHandler(svc)(ctx, callRequest("get_document", getArgs), getArgs)
	require.NoError(t, err)
	require.False(t, result.IsError)
	var got GetDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "Setup", got.Document.Title)
	assert.Equal(t, "# Setup", string(got.Document.Markdown))

	result, err = getListDocumentsHandler(svc)(ctx, callRequest("list_documents", nil), ListDocumentsRequest{})
	require.NoError(t, err)
	var list ListDocumentsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &list))
	require.Len(t, list.Documents, 1)
	assert.Equal(t, "/guides/setup", list.Documents[0].URL)
}

func TestCreateDocumentErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	handler := getCreateDocumentHandler(svc)

	args := CreateDocumentRequest{FilePath: "page", Content: "x"}
	result, err := handler(ctx, callRequest("create_document", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = handler(ctx, callRequest("create_document", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "File already exists", resultText(t, result))

	args = CreateDocumentRequest{FilePath: "", Content: "x"}
	result, err = handler(ctx, callRequest("create_document", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "File path and content are required", resultText(t, result))
}

func TestGetDocumentValidation(t *testing.T) {
	ctx := context.Background()
	handler := getGetDocumentHandler(newTestService(t))

	args := GetDocumentRequest{}
	result, err := handler(ctx, callRequest("get_document", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	args = GetDocumentRequest{Slug: "missing"}
	result, err = handler(ctx, callRequest("get_document", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
}

func TestListDocumentsEmpty(t *testing.T) {
	result, err := getListDocumentsHandler(newTestService(t))(context.Background(), callRequest("list_documents", nil), ListDocumentsRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"documents":[]}`, resultText(t, result))
}
