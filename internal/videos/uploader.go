package videos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/videoserver/provider/internal/config"
	"github.com/videoserver/provider/internal/logging"
	"github.com/videoserver/provider/internal/models"
)

// DefaultUploadTimeout bounds the upload POST when no client is supplied.
const DefaultUploadTimeout = 2 * time.Minute

// responseDrainLimit caps how much of the backend's reply is read before closing.
const responseDrainLimit = 64 << 10

// ConfigStore loads the provider settings used by one upload.
type ConfigStore interface {
	Load(ctx context.Context) (config.ProviderConfig, error)
}

// UUIDWriter records a generated video UUID on the asset.
type UUIDWriter interface {
	SaveVideoUUID(ctx context.Context, contentID, videoUUID string) error
}

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dependencies groups the collaborators of an Uploader.
type Dependencies struct {
	Config      ConfigStore
	Sites       AncestorResolver
	Integration IntegrationURLProvider
	Source      ContentSource

	// UUIDs is required only when PersistGeneratedUUID is enabled.
	UUIDs   UUIDWriter
	Client  HTTPDoer
	Limiter *rate.Limiter
	Signer  *TokenSigner
	NewUUID func() string
}

// Uploader hands video assets to the transcoding backend, one multipart POST per call.
type Uploader struct {
	config      ConfigStore
	sites       *SiteResolver
	integration IntegrationURLProvider
	source      ContentSource
	uuids       UUIDWriter
	client      HTTPDoer
	limiter     *rate.Limiter
	signer      *TokenSigner
	newUUID     func() string
}

// NewUploader validates deps and fills in defaults for optional collaborators.
func NewUploader(deps Dependencies) (*Uploader, error) {
	if deps.Config == nil {
		return nil, errors.New("uploader: config store is required")
	}
	if deps.Sites == nil {
		return nil, errors.New("uploader: ancestor resolver is required")
	}
	if deps.Source == nil {
		return nil, errors.New("uploader: content source is required")
	}

	u := &Uploader{
		config:      deps.Config,
		sites:       NewSiteResolver(deps.Sites),
		integration: deps.Integration,
		source:      deps.Source,
		uuids:       deps.UUIDs,
		client:      deps.Client,
		limiter:     deps.Limiter,
		signer:      deps.Signer,
		newUUID:     deps.NewUUID,
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: DefaultUploadTimeout}
	}
	if u.signer == nil {
		u.signer = NewTokenSigner()
	}
	if u.newUUID == nil {
		u.newUUID = uuid.NewString
	}
	return u, nil
}

// Process uploads asset to the backend. Every step must succeed before the
// request is sent; nothing is retried.
func (u *Uploader) Process(ctx context.Context, asset models.VideoAsset) (err error) {
	ctx, span := logging.StartSpan(ctx, "videos.upload", slog.String("content_id", asset.ContentID))
	defer func() { span.End(err) }()

	cfg, err := u.loadConfig(ctx)
	if err != nil {
		return err
	}

	videoUUID, generated := u.videoUUID(asset)
	logger := logging.FromContext(ctx).With(slog.String("video_uuid", videoUUID))
	ctx = logging.WithLogger(ctx, logger)

	if generated && cfg.PersistGeneratedUUID && u.uuids == nil {
		return fmt.Errorf("%w: uuid persistence enabled without a writer", ErrConfiguration)
	}

	token, err := u.signer.Sign(asset.ContentID, cfg.JWTSecret)
	if err != nil {
		return err
	}

	req, err := u.buildRequest(ctx, asset, videoUUID, token)
	if err != nil {
		return err
	}

	if err := u.submit(ctx, cfg, req); err != nil {
		return err
	}

	if generated && cfg.PersistGeneratedUUID {
		if err := u.uuids.SaveVideoUUID(ctx, asset.ContentID, videoUUID); err != nil {
			return fmt.Errorf("persist video uuid: %w", err)
		}
		logger.Debug("persisted generated video uuid")
	}

	return nil
}

func (u *Uploader) loadConfig(ctx context.Context) (config.ProviderConfig, error) {
	cfg, err := u.config.Load(ctx)
	if err != nil {
		return config.ProviderConfig{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return config.ProviderConfig{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

func (u *Uploader) videoUUID(asset models.VideoAsset) (string, bool) {
	if strings.TrimSpace(asset.VideoUUID) != "" {
		return asset.VideoUUID, false
	}
	return u.newUUID(), true
}

func (u *Uploader) buildRequest(ctx context.Context, asset models.VideoAsset, videoUUID, token string) (models.UploadRequest, error) {
	filename, err := u.source.Filename(ctx, asset)
	if err != nil {
		return models.UploadRequest{}, fmt.Errorf("source filename: %w", err)
	}

	stream, err := u.source.Fetch(ctx, asset)
	if err != nil {
		return models.UploadRequest{}, err
	}

	siteCode, found, err := u.sites.ResolveSiteCode(ctx, asset)
	if err != nil {
		stream.Close()
		return models.UploadRequest{}, fmt.Errorf("resolve site code: %w", err)
	}
	if !found {
		logging.FromContext(ctx).Debug("no site container above asset")
	}

	webhook, err := u.webhook(ctx, asset.ContentID)
	if err != nil {
		stream.Close()
		return models.UploadRequest{}, err
	}

	return models.UploadRequest{
		ContentID: asset.ContentID,
		VideoUUID: videoUUID,
		VideoName: asset.Name,
		FileName:  filename,
		SiteCode:  siteCode,
		Webhook:   webhook,
		Token:     token,
		Payload:   stream,
	}, nil
}

func (u *Uploader) webhook(ctx context.Context, contentID string) (string, error) {
	if u.integration == nil {
		return "", nil
	}
	base, err := u.integration.IntegrationServerURL(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve integration server url: %w", err)
	}
	url, _ := BuildWebhookURL(base, contentID)
	return url, nil
}

func (u *Uploader) submit(ctx context.Context, cfg config.ProviderConfig, req models.UploadRequest) error {
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return err
	}

	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for upload slot: %w", err)
		}
	}

	uploadURL := cfg.UploadURL()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: post %s: %w", ErrTransport, uploadURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseDrainLimit))

	logger := logging.FromContext(ctx)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if cfg.ValidateResponseStatus {
			return fmt.Errorf("%w: backend responded %d", ErrTransport, resp.StatusCode)
		}
		logger.Warn("video backend returned non-success status", slog.Int("status", resp.StatusCode))
		return nil
	}

	logger.Info("video upload dispatched", slog.Int("status", resp.StatusCode), slog.String("site_code", req.SiteCode))
	return nil
}

// encodeUpload consumes req.Payload into a multipart body and closes it when it is a ReadCloser.
func encodeUpload(req models.UploadRequest) (*bytes.Buffer, string, error) {
	if closer, ok := req.Payload.(io.Closer); ok {
		defer closer.Close()
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	name := req.ContentID
	if req.FileName != "" {
		name = path.Base(req.FileName)
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if req.Payload != nil {
		if _, err := io.Copy(part, req.Payload); err != nil {
			return nil, "", fmt.Errorf("read video stream: %w", err)
		}
	}

	fields := []struct{ name, value string }{
		{"contentId", req.ContentID},
		{"videoUUID", req.VideoUUID},
		{"videoName", req.VideoName},
		{"fileName", req.FileName},
		{"siteCode", req.SiteCode},
		{"webhook", req.Webhook},
		{"jwt", req.Token},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}
