// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/fossrlabs/fossr-engine/internal/storage/models"
)

// Storage persists trade receipts, settlements, winners and state
// snapshots. Persistence is observational: the market engine never reads
// it back to make decisions.
type Storage interface {
	// Receipts
	SaveReceipt(ctx context.Context, receipt *models.Receipt) error
	ListReceipts(ctx context.Context, buyer string, limit, offset int) ([]*models.Receipt, error)

	// Settlements
	SaveSettlement(ctx context.Context, settlement *models.Settlement) error

	// Winners
	SaveWinner(ctx context.Context, winner *models.Winner) error
	LatestWinner(ctx context.Context) (*models.Winner, error)

	// Snapshots
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error

	// Migrations
	RunMigrations() error
}
