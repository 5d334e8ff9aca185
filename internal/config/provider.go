package config

import (
	"context"
	"errors"
	"strings"
)

// UploadPath is appended to the backend URL to form the upload endpoint.
const UploadPath = "/api/video/upload"

// ProviderExternalID identifies the provider configuration record in the repository.
const ProviderExternalID = "plugins.com.atex.plugins.video-server-provider.Config"

var (
	// ErrMissingBackendURL indicates videoServerBackendUrl was not configured.
	ErrMissingBackendURL = errors.New("video server backend url not configured")
	// ErrMissingSecret indicates the shared signing secret was not configured.
	ErrMissingSecret = errors.New("video server jwt secret not configured")
)

// ProviderConfig is the snapshot of settings consumed by a single upload.
type ProviderConfig struct {
	BackendURL string `yaml:"videoServerBackendUrl"`
	JWTSecret  string `yaml:"jwtSecret"`

	// ValidateResponseStatus treats non-2xx backend responses as failures.
	ValidateResponseStatus bool `yaml:"validateResponseStatus"`
	// PersistGeneratedUUID writes a freshly generated video UUID back onto the asset.
	PersistGeneratedUUID bool `yaml:"persistGeneratedUuid"`
}

// UploadURL returns the backend endpoint receiving multipart uploads.
func (p ProviderConfig) UploadURL() string {
	return p.BackendURL + UploadPath
}

// Validate reports whether the snapshot carries the values required to upload.
func (p ProviderConfig) Validate() error {
	if strings.TrimSpace(p.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	if p.JWTSecret == "" {
		return ErrMissingSecret
	}
	return nil
}

// StaticStore serves provider settings and the integration URL from a loaded Config.
type StaticStore struct {
	provider       ProviderConfig
	integrationURL string
}

// NewStaticStore wraps the provider section of cfg.
func NewStaticStore(cfg Config) *StaticStore {
	return &StaticStore{provider: cfg.Provider, integrationURL: cfg.IntegrationServerURL}
}

// Load returns the provider settings captured at startup.
func (s *StaticStore) Load(context.Context) (ProviderConfig, error) {
	if s == nil {
		return ProviderConfig{}, errors.New("static config store not initialised")
	}
	return s.provider, nil
}

// IntegrationServerURL returns the configured integration base URL, possibly empty.
func (s *StaticStore) IntegrationServerURL(context.Context) (string, error) {
	if s == nil {
		return "", nil
	}
	return s.integrationURL, nil
}
