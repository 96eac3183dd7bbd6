// Package mcp exposes a kernel link as Model Context Protocol tools.
//
// The server keeps its own tool registry so tools can be listed and invoked
// directly, and can also be served over any MCP transport through the
// official SDK server (see Server.Run).
package mcp
