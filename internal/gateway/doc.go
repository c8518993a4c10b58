// Package gateway exposes the Submission API as MCP tools. It holds the
// tool invoker that runs the authorization pipeline in front of every
// downstream call, the operation implementations, and the MCP server that
// registers them over streamable HTTP.
package gateway
