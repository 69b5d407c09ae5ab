// Package remote defines the contract the sync engine requires from
// the remote authoritative store. Implementations live elsewhere
// (internal/remoteclient provides the HTTP one); the engine only ever
// sees this interface and the two sentinel errors.
package remote

import (
	"context"
	"errors"

	"github.com/marcus/qn/internal/models"
)

// Sentinel errors. Transport and server failures collapse to
// ErrRemoteUnavailable; ErrNotFound is reserved for an update against a
// record missing on the remote side. The engine retains queued work on
// any other error too, so adapters may surface richer failures (bad
// credentials, malformed responses) without losing operations.
var (
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrNotFound          = errors.New("remote record not found")
)

// Adapter is the network CRUD surface plus the change-subscription
// channel. All calls either succeed or fail with one of the sentinels
// (wrapped); adapters impose no retries of their own.
type Adapter interface {
	// Insert creates a record on the remote store.
	Insert(ctx context.Context, rec *models.NoteRecord) error

	// Update replaces a record's fields. Fails with ErrNotFound when
	// the record is missing remotely.
	Update(ctx context.Context, rec *models.NoteRecord) error

	// Delete removes a record. Deleting an already-absent id succeeds;
	// delete is idempotent.
	Delete(ctx context.Context, id string) error

	// FetchAll returns the full remote record set.
	FetchAll(ctx context.Context) ([]models.NoteRecord, error)

	// Subscribe registers a callback fired whenever the remote set may
	// have changed. The callback carries no payload guarantee beyond
	// "something changed"; callers react with a full pull, never by
	// trusting a delta. The returned stop function cancels the
	// subscription.
	Subscribe(ctx context.Context, onChange func()) (stop func(), err error)
}
