// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from it; this package only defines
// the settings (listen port, API key, body limit) and small helpers over them.
package server
