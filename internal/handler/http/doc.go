// Package http implements the REST transport of the reference server.
//
// It exposes route wiring, request handlers, and middleware used by the REST
// API. Cross-cutting concerns such as authentication, request tracing, access
// logging and panic recovery are handled in this package before requests
// are delegated to the service layer. The record change feed is served as
// server-sent events.
package http
