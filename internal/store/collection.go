package store

import (
	"context"
	"fmt"

	"talentlens/internal/config"
	"talentlens/internal/errors"
	"talentlens/internal/types"
)

// DocumentCollection is the durable document store behind the candidate
// store. Documents are keyed by record id; externalUid is a secondary
// lookup key. Implementations return RECORD_NOT_FOUND for missing ids and
// STORE_FAILED for driver-level failures.
type DocumentCollection interface {
	// Get returns the document with the given id.
	Get(ctx context.Context, id string) (*types.CandidateRecord, error)

	// Put creates or fully replaces the document keyed by record.ID.
	Put(ctx context.Context, record *types.CandidateRecord) error

	// Update shallow-merges the given fields into an existing document.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) error

	// FindByUID returns the document whose externalUid matches, or
	// RECORD_NOT_FOUND when no document carries that uid.
	FindByUID(ctx context.Context, externalUID string) (*types.CandidateRecord, error)

	// List returns all documents in insertion order.
	List(ctx context.Context) ([]*types.CandidateRecord, error)

	// Ping verifies the collection is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// NewCollection builds a document collection from store configuration.
func NewCollection(cfg config.StoreConfig, logger *errors.Logger) (DocumentCollection, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgresCollection(cfg, logger)
	case "memory", "":
		if logger != nil {
			logger.Debug("Using in-memory document collection")
		}
		return NewMemoryCollection(), nil
	default:
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported store driver: %s", cfg.Driver),
			nil,
		)
	}
}

func notFoundErr(id string) *errors.AppError {
	return errors.NewStoreError(
		errors.ErrCodeRecordNotFound,
		"candidate record not found",
		nil,
	).WithContext("id", id)
}
