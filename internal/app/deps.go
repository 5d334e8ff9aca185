package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/videoserver/provider/internal/config"
	"github.com/videoserver/provider/internal/db"
	"github.com/videoserver/provider/internal/handlers"
	"github.com/videoserver/provider/internal/middleware"
	"github.com/videoserver/provider/internal/repositories"
	"github.com/videoserver/provider/internal/storage"
	"github.com/videoserver/provider/internal/videos"
)

type dependencies struct {
	Assets   repositories.AssetRepository
	Uploader *videos.Uploader
	Handlers handlers.Dependencies
}

// buildDependencies wires together the concrete collaborators of the uploader.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (dependencies, error) {
	assets := repositories.NewPostgresAssetRepository(pool)

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		return dependencies{}, err
	}

	var source videos.ContentSource
	switch cfg.ContentSource {
	case config.ContentSourceExport:
		source = videos.NewExportSource(exporter)
	default:
		source = videos.NewMetadataPathSource(exporter)
	}

	var (
		store       videos.ConfigStore
		integration videos.IntegrationURLProvider
	)
	switch cfg.ConfigSource {
	case config.SourcePostgres:
		store = repositories.NewPostgresConfigStore(pool)
		integration = videos.NewCachingIntegrationProvider(repositories.NewPostgresIntegrationStore(pool), cfg.IntegrationCacheTTL)
	default:
		static := config.NewStaticStore(cfg)
		store = static
		integration = static
	}

	var limiter *rate.Limiter
	if cfg.UploadRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.UploadRateLimit), max(cfg.UploadBurst, 1))
	}

	uploader, err := videos.NewUploader(videos.Dependencies{
		Config:      store,
		Sites:       assets,
		Integration: integration,
		Source:      source,
		UUIDs:       assets,
		Client:      &http.Client{Timeout: cfg.UploadTimeout},
		Limiter:     limiter,
	})
	if err != nil {
		return dependencies{}, err
	}

	return dependencies{
		Assets:   assets,
		Uploader: uploader,
		Handlers: handlers.Dependencies{
			Assets:         assets,
			Uploader:       uploader,
			ProcessLimiter: middleware.NewIPRateLimiter(cfg.ProcessRateLimit, time.Minute, cfg.ProcessRateBurst, 10*time.Minute),
		},
	}, nil
}

func buildExporter(ctx context.Context, cfg config.Config) (videos.Exporter, error) {
	switch cfg.Exporter {
	case config.ExporterS3:
		return storage.NewS3Exporter(ctx, cfg.ObjectStore)
	case config.ExporterFile:
		return storage.NewFileExporter(cfg.FileRoot)
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}
