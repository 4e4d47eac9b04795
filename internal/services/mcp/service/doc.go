// Package service hosts the MCP server and its transports.
package service
