// CLAUDE:SUMMARY Transport-agnostic endpoint abstraction: Endpoint, Middleware, Chain.
// Package kit provides the endpoint abstraction shared by the HTTP and MCP
// transports: a business operation is an Endpoint, cross-cutting concerns
// wrap it as Middleware, and transports adapt requests into it.
package kit

import "context"

// Endpoint is one business operation, independent of transport.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with a cross-cutting concern.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost: the request
// passes a, b, c, then the endpoint; the response unwinds c, b, a.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}
