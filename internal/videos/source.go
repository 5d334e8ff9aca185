package videos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/videoserver/provider/internal/models"
)

// ContentSource yields the raw bytes and original filename of a video asset.
type ContentSource interface {
	Fetch(ctx context.Context, asset models.VideoAsset) (io.ReadCloser, error)
	Filename(ctx context.Context, asset models.VideoAsset) (string, error)
}

// Exporter copies a stored file out of the repository's backing storage.
type Exporter interface {
	Export(ctx context.Context, path string, w io.Writer) error
}

// ExportSource exports the asset's stored video directly.
type ExportSource struct {
	exporter Exporter
}

// NewExportSource returns a ContentSource that always attempts the export.
func NewExportSource(exporter Exporter) *ExportSource {
	return &ExportSource{exporter: exporter}
}

// Fetch exports the asset's current video file.
func (s *ExportSource) Fetch(ctx context.Context, asset models.VideoAsset) (io.ReadCloser, error) {
	if s == nil || s.exporter == nil {
		return nil, fmt.Errorf("export source: %w", ErrProviderUnavailable)
	}
	return export(ctx, s.exporter, asset.VideoPath)
}

// Filename reports the stored path of the asset's video.
func (s *ExportSource) Filename(_ context.Context, asset models.VideoAsset) (string, error) {
	return asset.VideoPath, nil
}

// MetadataPathSource exports the path recorded in the asset metadata and refuses
// assets that have none.
type MetadataPathSource struct {
	exporter Exporter
}

// NewMetadataPathSource returns a ContentSource guarded by the recorded video path.
func NewMetadataPathSource(exporter Exporter) *MetadataPathSource {
	return &MetadataPathSource{exporter: exporter}
}

// Fetch returns ErrStreamNotFound without touching storage when no path is recorded.
func (s *MetadataPathSource) Fetch(ctx context.Context, asset models.VideoAsset) (io.ReadCloser, error) {
	if strings.TrimSpace(asset.VideoPath) == "" {
		return nil, fmt.Errorf("content %s: %w", asset.ContentID, ErrStreamNotFound)
	}
	if s == nil || s.exporter == nil {
		return nil, fmt.Errorf("metadata path source: %w", ErrProviderUnavailable)
	}
	return export(ctx, s.exporter, asset.VideoPath)
}

// Filename reports the recorded video path.
func (s *MetadataPathSource) Filename(_ context.Context, asset models.VideoAsset) (string, error) {
	return asset.VideoPath, nil
}

func export(ctx context.Context, exporter Exporter, path string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	if err := exporter.Export(ctx, path, &buf); err != nil {
		return nil, fmt.Errorf("export %s: %w", path, err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

var (
	_ ContentSource = (*ExportSource)(nil)
	_ ContentSource = (*MetadataPathSource)(nil)
)
