package web

import (
	"context"
	"net/http"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
)

// withRequestMetadata adds the client IP and User-Agent to ctx so the upload
// pipeline can include them in its log entries.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
