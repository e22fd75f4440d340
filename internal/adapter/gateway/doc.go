// Package gateway is the single public entry point in front of the posts and
// comments services. It matches request paths against a YAML route table,
// throttles clients with a token bucket each, and proxies to the upstream
// unless the last health check found it unreachable.
package gateway
