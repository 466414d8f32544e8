package ports

import (
	"context"

	"github.com/haloguard/haloguard-cli/internal/domain"
)

type HistoryRepository interface {
	List(ctx context.Context) ([]domain.ScanHistoryEntry, error)
	// Prepend stores entry ahead of the existing entries, keeping at most limit.
	Prepend(ctx context.Context, entry domain.ScanHistoryEntry, limit int) error
}
