package prober

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mediapeek/twitchpeek/internal/config"
	"github.com/mediapeek/twitchpeek/internal/domain"
)

// HTTPProber implements Prober using HEAD requests. The Twitch preview CDN
// serves static JPEGs and honors HEAD, so no image bytes are transferred.
type HTTPProber struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewHTTPProber creates a new HTTP-based poster prober.
func NewHTTPProber(cfg config.Poster) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: cfg.ProbeTimeout,
		},
		userAgent: cfg.UserAgent,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for probe reporting.
func (p *HTTPProber) SetLogger(logger *slog.Logger) {
	p.logger = logger
}

// Probe checks URL accessibility without downloading content.
// Transport errors are reported inside the result, not as an error return,
// so callers can fall through to the next candidate.
func (p *HTTPProber) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/jpeg,image/*;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProbeResult{
			Accessible: false,
			Error:      err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	result := &ProbeResult{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Accessible:    resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	if !result.Accessible {
		result.Error = fmt.Sprintf("status code %d", resp.StatusCode)
	}

	return result, nil
}

// SelectFirstLive walks a preference-ordered URL list and returns the first
// accessible one. Any failure means try the next candidate; there is no
// per-candidate retry.
func (p *HTTPProber) SelectFirstLive(ctx context.Context, urls []string) (string, error) {
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		probe, err := p.Probe(ctx, url)
		if err != nil {
			continue
		}
		if probe.Accessible {
			return url, nil
		}

		p.logger.Debug("poster candidate rejected",
			"url", url,
			"reason", probe.Error,
		)
	}
	return "", domain.ErrNoPoster
}
