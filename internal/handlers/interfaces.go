package handlers

import (
	"context"

	"github.com/videoserver/provider/internal/models"
)

// AssetFinder loads the video asset a trigger refers to.
type AssetFinder interface {
	FindByContentID(ctx context.Context, contentID string) (models.VideoAsset, error)
}

// VideoUploader hands an asset to the transcoding backend.
type VideoUploader interface {
	Process(ctx context.Context, asset models.VideoAsset) error
}
