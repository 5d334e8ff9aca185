package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/videoserver/provider/internal/logging"
	"github.com/videoserver/provider/internal/repositories"
	"github.com/videoserver/provider/internal/videos"
)

// ProcessHandler lets the encoding pipeline trigger an upload over HTTP.
type ProcessHandler struct {
	Assets   AssetFinder
	Uploader VideoUploader
	Limiter  RateLimiter
}

// Process handles POST /api/v1/videos/{contentId}/process.
func (h ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if !allowRequest(h.Limiter, r, "process") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many upload requests")
		return
	}

	contentID := strings.TrimSpace(r.PathValue("contentId"))
	if contentID == "" {
		respondError(ctx, w, http.StatusBadRequest, "content id is required")
		return
	}
	ctx = logging.With(ctx, "content_id", contentID)

	if h.Assets == nil || h.Uploader == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "upload pipeline not configured")
		return
	}

	asset, err := h.Assets.FindByContentID(ctx, contentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video asset not found")
			return
		}
		logging.FromContext(ctx).Error("load video asset", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "could not load video asset")
		return
	}

	if err := h.Uploader.Process(ctx, asset); err != nil {
		status, message := uploadErrorStatus(err)
		respondError(ctx, w, status, message)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"contentId": contentID,
		"status":    "dispatched",
	})
}

func uploadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "video asset not found"
	case errors.Is(err, videos.ErrStreamNotFound):
		return http.StatusUnprocessableEntity, "video asset has no stored content"
	case errors.Is(err, videos.ErrConfiguration):
		return http.StatusServiceUnavailable, "video server provider is not configured"
	case errors.Is(err, videos.ErrTransport):
		return http.StatusBadGateway, "video backend unreachable"
	default:
		return http.StatusInternalServerError, "video upload failed"
	}
}
