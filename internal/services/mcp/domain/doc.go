// Package domain defines the MCP tool and resource surface for campaign
// state. Tool handlers translate typed MCP inputs into game service calls
// and shape the responses for MCP clients.
package domain
