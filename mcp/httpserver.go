package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMcpHTTPServer creates the streamable HTTP transport for s, served at endpoint.
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
	)
}
