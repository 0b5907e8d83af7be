// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP client middleware and helper functions.

# Transport Chain

Middleware wraps an http.RoundTripper. The API client builds:

	transport := middleware.Chain(http.DefaultTransport,
		middleware.WithRequestID,
		middleware.WithLogging,
	)

# Request Logging

WithLogging logs request start (method, path, request_id) and completion
(status, duration_ms) at debug level, and failures at warn level.
Authorization headers are never logged.

# Request IDs

WithRequestID stamps an X-Request-ID (random UUID) on requests that do
not already carry one.

# JSON Helpers

	var out models.LikeResponse
	err := middleware.DecodeJSON(resp, &out)

	payload := middleware.ReadError(resp) // {"error"|"message"|"detail"}
*/
package middleware
