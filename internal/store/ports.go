package store

import (
	"context"

	"finman/internal/core"
)

// Persister reads and writes a whole ledger snapshot.
//
// Load returns core.ErrNotExist when nothing was ever saved and a
// *core.CorruptDataError when stored content cannot be decoded at all. A
// persister that can decode the document but not every record returns the
// good records together with a *RecordErrors describing the rest.
type Persister interface {
	Load(ctx context.Context) (core.Snapshot, error)
	Save(ctx context.Context, s core.Snapshot) error
	Close() error
}

// RecordErrors lists per-record decode failures from a partially readable load.
type RecordErrors []*core.CorruptDataError

func (e RecordErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return e[0].Error() + " (and more)"
}
