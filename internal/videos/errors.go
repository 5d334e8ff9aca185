package videos

import "errors"

var (
	// ErrConfiguration indicates provider configuration could not be loaded or is incomplete.
	ErrConfiguration = errors.New("video server configuration unavailable")
	// ErrStreamNotFound indicates the asset has no recorded video content to upload.
	ErrStreamNotFound = errors.New("video stream not found")
	// ErrSigning indicates the upload token could not be produced.
	ErrSigning = errors.New("sign upload token")
	// ErrTransport indicates the upload request could not be delivered to the backend.
	ErrTransport = errors.New("video upload transport failure")
	// ErrProviderUnavailable indicates a collaborator was not configured.
	ErrProviderUnavailable = errors.New("video provider collaborator unavailable")
)
