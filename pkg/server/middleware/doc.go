// Package middleware provides the HTTP middleware chain of the request API:
// panic recovery, request IDs, access logging, CORS, body size limits and
// per-request timeouts.
//
// Middleware are plain func(http.Handler) http.Handler values (or
// http.Handler wrappers) and compose in the usual way:
//
//	handler = middleware.Timeout(30 * time.Second)(handler)
//	handler = middleware.CORS(corsConfig)(handler)
//	handler = middleware.RequestID(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.Recovery(logger)(handler)
package middleware
