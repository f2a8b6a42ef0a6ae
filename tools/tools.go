//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run via `go run`/`go install` and are not imported by the module.
package tools

// Development tools:
//
// mockgen - regenerates internal/mocks from the ports interfaces
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock v0.6.0 (matches go.mod)
//
// Air - live reload for local development
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
