// Package dashboard is the public entry point for embedding the csdash
// presentation service in another program.
package dashboard

import (
	core "github.com/goliatone/go-csdash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Session is one open page.
type Session = core.Session

// Options re-export for convenience.
type Options = core.Options

// BootstrapOptions re-export for convenience.
type BootstrapOptions = core.BootstrapOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Bootstrap loads page definitions and templates before building the service.
func Bootstrap(opts BootstrapOptions) (*Service, error) {
	return core.Bootstrap(opts)
}
