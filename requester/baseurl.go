package requester

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-cattr/core"
	"github.com/google/uuid"
)

const defaultProbeTimeout = 5 * time.Second

const statusEndpoint = "status"

// ResolveOptions configure the base-URL discovery probes.
type ResolveOptions struct {
	// Force accepts the normalized root without probing it.
	Force bool
	// Timeout bounds each probe. Defaults to five seconds.
	Timeout time.Duration
}

// ResolveBaseURL discovers the API root behind a user-supplied hostname or
// URL. The root's status endpoint is probed first; when the backend does not
// answer there, the probe is repeated under an /api/ suffix. The first
// candidate whose status payload carries the backend identity marker wins.
func (r *Requester) ResolveBaseURL(ctx context.Context, hostOrURL string, opts ResolveOptions) (string, error) {
	root := strings.TrimSpace(hostOrURL)
	if root == "" {
		return "", core.NewValidationError("url", "host or url is required")
	}
	if !strings.Contains(root, "://") {
		root = "https://" + root
	}
	root = strings.TrimSuffix(root, "/")

	if !strings.HasPrefix(root, "http://") && !strings.HasPrefix(root, "https://") {
		return "", core.NewValidationError("url", "only http and https urls are supported")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	if opts.Force {
		return root + "/", nil
	}

	candidates := []string{root, root + "/api"}
	var lastCtx core.RequestContext
	for _, candidate := range candidates {
		probeURL := candidate + "/" + statusEndpoint
		reqCtx := core.RequestContext{
			RequestID: uuid.NewString(),
			Method:    http.MethodGet,
			URL:       probeURL,
		}
		lastCtx = reqCtx

		confirmed, err := r.probeStatus(ctx, probeURL, timeout, reqCtx)
		if err != nil {
			return "", err
		}
		if confirmed {
			return candidate + "/", nil
		}
	}

	return "", core.NewAPIError(
		http.StatusNotFound,
		"app.not_found",
		"cattr: no backend identity confirmed at the supplied url",
		"",
		lastCtx,
	)
}

func (r *Requester) probeStatus(ctx context.Context, probeURL string, timeout time.Duration, reqCtx core.RequestContext) (bool, error) {
	r.mu.RLock()
	adapter := r.adapter
	version := r.version
	r.mu.RUnlock()
	if adapter == nil {
		return false, core.NewValidationError("transport", "transport adapter is not configured")
	}

	res, err := adapter.Do(ctx, core.TransportRequest{
		Method: http.MethodGet,
		URL:    probeURL,
		Headers: map[string]string{
			headerAccept:        "application/json",
			headerClientVersion: "go-cattr/" + version,
		},
		Timeout:  timeout,
		Metadata: map[string]any{"request_id": reqCtx.RequestID},
	})
	if err != nil {
		return false, core.NewNetworkError(err, reqCtx)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return false, nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return false, nil
	}
	// Two API generations spell the identity marker differently.
	return isTruthy(payload["cattr"]) || isTruthy(payload["amazingtime"]), nil
}

func isTruthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(typed))
		return trimmed != "" && trimmed != "false" && trimmed != "0"
	default:
		return false
	}
}
