package repository

import (
	"context"
	"time"

	"localfeed/internal/domain/entity"
)

// SourceRepository is the registry of ingestion sources.
type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	ListActive(ctx context.Context) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	Delete(ctx context.Context, id int64) error
	// TouchFetchedAt records the last successful fetch of a source.
	TouchFetchedAt(ctx context.Context, id int64, t time.Time) error
}
