package videos

import (
	"context"
	"strings"
)

const webhookSegment = "videomanager/"

// IntegrationURLProvider supplies the base URL of the integration server that
// receives completion callbacks. An empty value means no webhook is configured.
type IntegrationURLProvider interface {
	IntegrationServerURL(ctx context.Context) (string, error)
}

// BuildWebhookURL joins the integration base URL and the content id into the
// callback the backend invokes on completion.
func BuildWebhookURL(base, contentID string) (string, bool) {
	if strings.TrimSpace(base) == "" {
		return "", false
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + webhookSegment + contentID, true
}
