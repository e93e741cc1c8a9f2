package storage

import "context"

// DumpStorage abstracts where legacy dump files live before import. The
// orchestrator fetches a dump to a local path for parsing and deletes
// it once the job reaches a terminal state; consumed dumps may contain
// sensitive legacy data and are not retained.
type DumpStorage interface {
	// Fetch makes the dump available as a local file and returns its
	// path. For remote backends the returned path is a temporary copy
	// the caller removes after parsing.
	Fetch(ctx context.Context, key string) (string, error)

	// Delete removes the dump from the backend.
	Delete(ctx context.Context, key string) error

	// Exists checks if the dump is present.
	Exists(ctx context.Context, key string) (bool, error)
}
