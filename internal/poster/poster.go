// Package poster resolves best-effort poster images for Twitch media by
// probing a descending list of CDN thumbnail URLs and caching the winner
// in memory. The cache never persists across restarts: live previews go
// stale within minutes anyway.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mediapeek/twitchpeek/internal/config"
	"github.com/mediapeek/twitchpeek/internal/domain"
	"github.com/mediapeek/twitchpeek/internal/prober"
)

// liveTemplate is the Twitch preview CDN URL for live channel snapshots.
const liveTemplate = "https://static-cdn.jtvnw.net/previews-ttv/live_user_%s-%dx%d.jpg"

// Size is a poster candidate resolution.
type Size struct {
	Width  int
	Height int
}

// sizes is the fixed descending candidate list. The first size that
// probes successfully wins.
var sizes = []Size{
	{1280, 720},
	{640, 360},
	{480, 270},
}

// entry is a cached probe outcome. An empty URL records a negative result.
type entry struct {
	url       string
	expiresAt time.Time
}

// Service probes and caches poster URLs. Concurrent lookups for the same
// key collapse into a single probe pass.
type Service struct {
	prober      prober.Prober
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *slog.Logger

	// now is swapped out by tests to control entry expiry.
	now func() time.Time

	mu      sync.RWMutex
	entries map[domain.MediaKey]entry
	group   singleflight.Group
}

// NewService creates a poster service.
func NewService(cfg config.Poster, p prober.Prober, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		prober:      p,
		ttl:         cfg.TTL,
		negativeTTL: cfg.NegativeTTL,
		logger:      logger,
		now:         time.Now,
		entries:     make(map[domain.MediaKey]entry),
	}
}

// ChannelCandidates returns the descending CDN preview URLs for a channel.
func ChannelCandidates(login string) []string {
	urls := make([]string, 0, len(sizes))
	for _, s := range sizes {
		urls = append(urls, fmt.Sprintf(liveTemplate, login, s.Width, s.Height))
	}
	return urls
}

// VideoCandidates expands a Helix thumbnail template into descending
// candidate URLs. An empty template yields no candidates.
func VideoCandidates(template string) []string {
	if template == "" {
		return nil
	}
	urls := make([]string, 0, len(sizes))
	for _, s := range sizes {
		u := strings.ReplaceAll(template, "%{width}", strconv.Itoa(s.Width))
		u = strings.ReplaceAll(u, "%{height}", strconv.Itoa(s.Height))
		urls = append(urls, u)
	}
	return urls
}

// ChannelPoster returns the poster URL for a live channel preview.
func (s *Service) ChannelPoster(ctx context.Context, login string) (string, error) {
	media := domain.Media{Kind: domain.KindChannel, Channel: login}
	return s.lookup(ctx, media.Key(), ChannelCandidates(login))
}

// VideoPoster returns the poster URL for a VOD given its Helix thumbnail
// template. Without a template there is nothing to probe.
func (s *Service) VideoPoster(ctx context.Context, videoID, template string) (string, error) {
	media := domain.Media{Kind: domain.KindVideo, VideoID: videoID}
	candidates := VideoCandidates(template)
	if len(candidates) == 0 {
		return "", domain.NewMediaError(media.Key(), "poster", domain.ErrNoPoster)
	}
	return s.lookup(ctx, media.Key(), candidates)
}

// Invalidate drops the cached entry for a key, forcing the next lookup to
// probe again.
func (s *Service) Invalidate(key domain.MediaKey) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// RefreshChannel re-probes a channel whose cached entry is missing or
// expires within margin. Entries with more life left are untouched, so
// warmup ticks never churn the CDN for fresh posters.
func (s *Service) RefreshChannel(ctx context.Context, login string, margin time.Duration) error {
	key := domain.Media{Kind: domain.KindChannel, Channel: login}.Key()

	if expiresAt, ok := s.ExpiresAt(key); ok && expiresAt.Sub(s.now()) > margin {
		return nil
	}
	s.Invalidate(key)

	_, err := s.lookup(ctx, key, ChannelCandidates(login))
	return err
}

// ExpiresAt reports the expiry of a cached entry, if one exists.
func (s *Service) ExpiresAt(key domain.MediaKey) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.expiresAt, ok
}

func (s *Service) lookup(ctx context.Context, key domain.MediaKey, candidates []string) (string, error) {
	if url, ok, found := s.cached(key); found {
		if !ok {
			return "", domain.NewMediaError(key, "poster", domain.ErrNoPoster)
		}
		return url, nil
	}

	// Concurrent callers of the same key share one probe pass.
	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		// A racing caller may have populated the cache while this one
		// waited on the flight group.
		if url, ok, found := s.cached(key); found {
			if !ok {
				return "", domain.ErrNoPoster
			}
			return url, nil
		}

		url, err := s.prober.SelectFirstLive(ctx, candidates)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.store(key, "", s.negativeTTL)
			s.logger.Debug("no poster found", "key", key)
			return "", domain.ErrNoPoster
		}

		s.store(key, url, s.ttl)
		s.logger.Debug("poster cached", "key", key, "url", url)
		return url, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoPoster) {
			return "", domain.NewMediaError(key, "poster", domain.ErrNoPoster)
		}
		return "", err
	}

	return v.(string), nil
}

// cached returns (url, positive, found).
func (s *Service) cached(key domain.MediaKey) (string, bool, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().After(e.expiresAt) {
		return "", false, false
	}
	return e.url, e.url != "", true
}

func (s *Service) store(key domain.MediaKey, url string, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{
		url:       url,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
}
