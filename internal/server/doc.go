// Package server implements the HTTP server using Echo framework.
//
// Routes: auth (Discord OAuth), dashboard pages (guild selector + guild
// feature pages), JSON API (proxied to the bot API), and observability
// (health, metrics). Handlers split by domain: handlers_auth.go,
// handlers_pages.go, handlers_dashboard.go, handlers_api.go.
package server
