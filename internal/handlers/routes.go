package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	videos := ProcessHandler{Assets: deps.Assets, Uploader: deps.Uploader, Limiter: deps.ProcessLimiter}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/videos/{contentId}/process", videos.Process)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Assets         AssetFinder
	Uploader       VideoUploader
	ProcessLimiter RateLimiter
}
