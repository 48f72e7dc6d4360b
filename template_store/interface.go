package template_store

import "context"

type Interface interface {
	// Load returns the cached library when its snapshot still matches the
	// reference directory, and rebuilds it otherwise. The boolean reports
	// whether a rebuild happened.
	Load(ctx context.Context) (*Library, bool, error)

	// Build recomputes every template and rewrites the cache.
	Build(ctx context.Context) (*Library, error)

	// Snapshot reads the current path to modification time mapping.
	Snapshot() (Snapshot, error)
}
