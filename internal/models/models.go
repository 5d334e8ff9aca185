package models

import "io"

// VideoAsset is the repository's view of a single video and its stored content.
type VideoAsset struct {
	ContentID string
	Name      string
	// VideoUUID is empty until the transcoding backend has been handed the asset once.
	VideoUUID string
	VideoPath string
}

// Container is a node in the content hierarchy above an asset.
type Container struct {
	ContentID  string
	ExternalID string
	IsSite     bool
}

// UploadRequest holds everything sent to the transcoding backend for one asset.
// It only lives for the duration of a single upload.
type UploadRequest struct {
	ContentID string
	VideoUUID string
	VideoName string
	FileName  string
	SiteCode  string
	Webhook   string
	Token     string
	Payload   io.Reader
}
