// Package lease provides per-source exclusive leases so that two
// concurrent ingestion runs never fetch the same source at once.
package lease

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrNotHeld is returned by Release when the lease expired or belongs to
// another holder.
var ErrNotHeld = errors.New("lease not held")

// Lease is a held lease. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// Manager hands out leases keyed by source ID.
type Manager interface {
	// TryAcquire returns ok=false without error when another holder owns the key.
	TryAcquire(ctx context.Context, sourceID int64, ttl time.Duration) (Lease, bool, error)
}

func key(sourceID int64) string {
	return "localfeed:lease:source:" + strconv.FormatInt(sourceID, 10)
}
