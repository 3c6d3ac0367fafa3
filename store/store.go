// Package store persists the whole task/worker collection as one
// document. Every backend implements the same contract: load the full
// document, save the full document. There is no partial update; two
// concurrent read-modify-write cycles against the same backend race,
// and the last writer's snapshot wins. That trade-off is acceptable for
// a single-instance deployment and is deliberately not hidden behind a
// lock here.
package store

import (
	"context"

	"github.com/secondlabor/laborhub/types"
)

type Store interface {
	Load(ctx context.Context) (types.Collection, error)
	Save(ctx context.Context, col types.Collection) error
	Close() error
}
