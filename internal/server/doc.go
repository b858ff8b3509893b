// Package server exposes normalized season tables over a read-only JSON API.
//
// Routes are served by a chi router with request IDs, panic recovery, CORS and
// per-request logging. Tables come from a Loader, normally the season cache, so
// repeated requests for a season do not refetch it.
package server
