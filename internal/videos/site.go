package videos

import (
	"context"
	"fmt"

	"github.com/videoserver/provider/internal/models"
)

// AncestorResolver lists the containers above an asset in the content tree.
type AncestorResolver interface {
	AncestorChain(ctx context.Context, asset models.VideoAsset) ([]models.Container, error)
}

// SiteResolver finds the site an asset is published under.
type SiteResolver struct {
	ancestors AncestorResolver
}

// NewSiteResolver wraps an AncestorResolver.
func NewSiteResolver(ancestors AncestorResolver) *SiteResolver {
	return &SiteResolver{ancestors: ancestors}
}

// ResolveSiteCode walks the chain from its last element back to its first and
// returns the external id of the first site container met. Resolvers list the
// nearest parent first, so with nested sites the outermost one is reported.
func (r *SiteResolver) ResolveSiteCode(ctx context.Context, asset models.VideoAsset) (string, bool, error) {
	if r == nil || r.ancestors == nil {
		return "", false, fmt.Errorf("site resolver: %w", ErrProviderUnavailable)
	}

	chain, err := r.ancestors.AncestorChain(ctx, asset)
	if err != nil {
		return "", false, fmt.Errorf("ancestor chain for %s: %w", asset.ContentID, err)
	}

	for idx := len(chain) - 1; idx >= 0; idx-- {
		if chain[idx].IsSite {
			return chain[idx].ExternalID, true, nil
		}
	}
	return "", false, nil
}
