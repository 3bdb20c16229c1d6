package demoserver

import "github.com/raysh454/tempusfetch/internal/session"

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// AssetVersion is the Inertia version the site announces on its pages
	// and requires on Inertia GET visits.
	AssetVersion string

	// InitialRevision is the starting revision of the ranking data (default: 1).
	InitialRevision int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:            9999,
		AssetVersion:    session.PinnedInertiaVersion,
		InitialRevision: 1,
	}
}
