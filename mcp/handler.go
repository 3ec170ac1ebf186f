package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foomo/mddocs/service"
	"github.com/foomo/mddocs/service/vo"
	"github.com/foomo/mddocs/store"
)

const Version = "0.1.0"

type ListDocumentsRequest struct{}

type ListDocumentsResponse struct {
	Documents []vo.DocumentSummary `json:"documents"`
}

type GetDocumentRequest struct {
	Slug string `json:"slug"` // Document slug, e.g. "guides/setup"
}

type GetDocumentResponse struct {
	Document *vo.Document `json:"document"`
}

type CreateDocumentRequest struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
	Format   string `json:"format,omitempty"`
}

// NewServer creates a new MCP server exposing the documents of serviceInstance.
func NewServer(serviceInstance service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Markdown Docs MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List all markdown documents with their slug, URL and title"),
	)
	s.AddTool(listTool, mcp.NewTypedToolHandler(getListDocumentsHandler(serviceInstance)))

	getTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get the raw markdown body and title of a document"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The document slug without extension, e.g. 'guides/setup'"),
		),
	)
	s.AddTool(getTool, mcp.NewTypedToolHandler(getGetDocumentHandler(serviceInstance)))

	createTool := mcp.NewTool("create_document",
		mcp.WithDescription("Create a new markdown document. Fails if the document already exists"),
		mcp.WithString("filePath",
			mcp.Required(),
			mcp.Description("Target path, e.g. 'category/page-name'"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Document content"),
		),
		mcp.WithString("format",
			mcp.Description("Content format: 'markdown' (default) or 'html'"),
			mcp.Enum(string(vo.FormatMarkdown), string(vo.FormatHTML)),
		),
	)
	s.AddTool(createTool, mcp.NewTypedToolHandler(getCreateDocumentHandler(serviceInstance)))

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func getListDocumentsHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ListDocumentsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListDocumentsRequest) (*mcp.CallToolResult, error) {
		tree, err := serviceInstance.ListDocuments(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
		}
		documents := tree.Flatten()
		if documents == nil {
			documents = []vo.DocumentSummary{}
		}
		return jsonResult(ListDocumentsResponse{Documents: documents})
	}
}

func getGetDocumentHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
		if args.Slug == "" {
			return mcp.NewToolResultError("slug is required"), nil
		}

		document, err := serviceInstance.GetDocument(ctx, args.Slug)
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document %q not found", args.Slug)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
		}

		return jsonResult(GetDocumentResponse{Document: document})
	}
}

func getCreateDocumentHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args CreateDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args CreateDocumentRequest) (*mcp.CallToolResult, error) {
		response, err := serviceInstance.CreateDocument(ctx, vo.CreateRequest{
			FilePath: args.FilePath,
			Content:  args.Content,
			Format:   vo.ContentFormat(args.Format),
		})
		switch {
		case errors.Is(err, store.ErrConflict):
			return mcp.NewToolResultError("File already exists"), nil
		case service.IsValidation(err):
			return mcp.NewToolResultError(service.ValidationMessage(err)), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("failed to create document: %v", err)), nil
		}
		return jsonResult(response)
	}
}
