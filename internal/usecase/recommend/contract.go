package recommend

import (
	"context"

	"github.com/gifexplorer/gifsearch/internal/domain"
)

// Personalizer runs a tag-weighted ranking query against the search index.
type Personalizer interface {
	Personalize(ctx context.Context, tagWeights map[string]float64) ([]domain.ContentID, error)
}

// ProfileStore reads and updates per-user tag affinity.
type ProfileStore interface {
	TagCounts(ctx context.Context, userID int64) (map[string]int64, error)
	AddTags(ctx context.Context, userID int64, tags []string) error
}

// ContentResolver resolves single records for hydration and read events.
type ContentResolver interface {
	FindByID(ctx context.Context, id domain.ContentID) (domain.ContentRecord, error)
}
