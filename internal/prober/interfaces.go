package prober

import (
	"context"
)

// Prober checks remote image URLs for accessibility.
type Prober interface {
	// Probe checks URL accessibility without downloading content.
	Probe(ctx context.Context, url string) (*ProbeResult, error)

	// SelectFirstLive walks a preference-ordered URL list and returns the
	// first URL that probes as accessible.
	SelectFirstLive(ctx context.Context, urls []string) (string, error)
}

// ProbeResult contains information about a probed URL.
type ProbeResult struct {
	ContentType   string
	ContentLength int64
	Accessible    bool
	Error         string
}
