// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every endpoint.
//   - rayid: A request id (ray id) for every request, stored in the context
//     and echoed in the X-Ray-ID response header for tracing.
//
// The start command registers rayid first so that every log line of a
// request, auth failures included, carries the same id.
package middleware
