// Package handler implements the gateway HTTP handlers: one per AI endpoint,
// plus the not-found fallback. Each endpoint handler validates its query
// parameters, builds the upstream query and writes the resulting envelope.
package handler
