package repositories

import (
	"context"

	"github.com/videoserver/provider/internal/models"
)

// AssetRepository exposes data access for video assets and their place in the content tree.
type AssetRepository interface {
	FindByContentID(ctx context.Context, contentID string) (models.VideoAsset, error)
	SaveVideoUUID(ctx context.Context, contentID, videoUUID string) error
	AncestorChain(ctx context.Context, asset models.VideoAsset) ([]models.Container, error)
}

var _ AssetRepository = (*PostgresAssetRepository)(nil)
