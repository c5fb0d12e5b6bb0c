package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediapeek/twitchpeek/internal/domain"
	"github.com/mediapeek/twitchpeek/internal/repository"
	"github.com/mediapeek/twitchpeek/pkg/twitch"
)

// Enricher looks up channel/VOD metadata. Implemented by twitch.Enricher;
// nil disables enrichment entirely.
type Enricher interface {
	ChannelInfo(ctx context.Context, login string) (*domain.ChannelInfo, error)
	VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error)
}

// PosterSource probes and caches poster URLs. Implemented by poster.Service.
type PosterSource interface {
	ChannelPoster(ctx context.Context, login string) (string, error)
	VideoPoster(ctx context.Context, videoID, template string) (string, error)
	RefreshChannel(ctx context.Context, login string, margin time.Duration) error
}

// ResolveService turns raw Twitch URLs/handles into embeddable media:
// identity, embed src, best-effort metadata, and a poster.
type ResolveService struct {
	enricher     Enricher
	posters      PosterSource
	store        repository.MediaStore
	parentDomain string
	logger       *slog.Logger
}

// NewResolveService creates a resolve service. enricher may be nil when
// Helix credentials are not configured.
func NewResolveService(
	enricher Enricher,
	posters PosterSource,
	store repository.MediaStore,
	parentDomain string,
	logger *slog.Logger,
) *ResolveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveService{
		enricher:     enricher,
		posters:      posters,
		store:        store,
		parentDomain: parentDomain,
		logger:       logger,
	}
}

// Resolve parses raw input and assembles the full resolution result.
// Identity errors are returned; enrichment and poster failures degrade to
// an identity-only result.
func (s *ResolveService) Resolve(ctx context.Context, raw string) (*domain.ResolvedMedia, error) {
	media, err := twitch.ParseMedia(raw)
	if err != nil {
		return nil, err
	}

	resolved := &domain.ResolvedMedia{
		Media:      media,
		EmbedURL:   twitch.BuildEmbedURL(media, s.parentDomain),
		ResolvedAt: time.Now().UTC(),
	}

	s.enrich(ctx, resolved)
	s.attachPoster(ctx, resolved)
	s.record(ctx, resolved)

	return resolved, nil
}

// Poster resolves only the poster URL for raw input. Returns ErrNoPoster
// when every candidate fails.
func (s *ResolveService) Poster(ctx context.Context, raw string) (string, error) {
	media, err := twitch.ParseMedia(raw)
	if err != nil {
		return "", err
	}

	switch media.Kind {
	case domain.KindVideo:
		return s.posters.VideoPoster(ctx, media.VideoID, s.videoTemplate(ctx, media.VideoID))
	default:
		return s.posters.ChannelPoster(ctx, media.Channel)
	}
}

// Recent returns the most recently resolved media records.
func (s *ResolveService) Recent(ctx context.Context, limit int) ([]*domain.MediaRecord, error) {
	records, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent media: %w", err)
	}
	return records, nil
}

// WarmChannel re-probes a channel poster whose cache entry is missing or
// expires within margin. Used by the warmup pool, which passes its tick
// interval as the margin; a miss is not an error worth surfacing.
func (s *ResolveService) WarmChannel(ctx context.Context, login string, margin time.Duration) error {
	media, err := twitch.ParseMedia(login)
	if err != nil {
		return err
	}
	if media.Kind != domain.KindChannel {
		return domain.ErrNotTwitchMedia
	}

	err = s.posters.RefreshChannel(ctx, media.Channel, margin)
	if errors.Is(err, domain.ErrNoPoster) {
		return nil
	}
	return err
}

func (s *ResolveService) enrich(ctx context.Context, resolved *domain.ResolvedMedia) {
	if s.enricher == nil {
		return
	}

	switch resolved.Kind {
	case domain.KindChannel:
		info, err := s.enricher.ChannelInfo(ctx, resolved.Channel)
		if err != nil {
			s.logger.Warn("channel enrichment failed", "key", resolved.Key(), "error", err)
			return
		}
		resolved.ChannelInfo = info
	case domain.KindVideo:
		info, err := s.enricher.VideoInfo(ctx, resolved.VideoID)
		if err != nil {
			s.logger.Warn("video enrichment failed", "key", resolved.Key(), "error", err)
			return
		}
		resolved.VideoInfo = info
	}
}

func (s *ResolveService) attachPoster(ctx context.Context, resolved *domain.ResolvedMedia) {
	var url string
	var err error

	switch resolved.Kind {
	case domain.KindVideo:
		template := ""
		if resolved.VideoInfo != nil {
			template = resolved.VideoInfo.ThumbnailTemplate
		}
		url, err = s.posters.VideoPoster(ctx, resolved.VideoID, template)
	default:
		url, err = s.posters.ChannelPoster(ctx, resolved.Channel)
	}

	if err != nil {
		if !errors.Is(err, domain.ErrNoPoster) {
			s.logger.Warn("poster lookup failed", "key", resolved.Key(), "error", err)
		}
		return
	}
	resolved.PosterURL = url
}

func (s *ResolveService) record(ctx context.Context, resolved *domain.ResolvedMedia) {
	rec := &domain.MediaRecord{
		Key:        resolved.Key(),
		Kind:       resolved.Kind,
		Identifier: resolved.Identifier(),
		PosterURL:  resolved.PosterURL,
	}
	if resolved.ChannelInfo != nil {
		rec.DisplayName = resolved.ChannelInfo.DisplayName
		rec.Title = resolved.ChannelInfo.StreamTitle
	}
	if resolved.VideoInfo != nil {
		rec.DisplayName = resolved.VideoInfo.UserName
		rec.Title = resolved.VideoInfo.Title
	}

	if err := s.store.Record(ctx, rec); err != nil {
		s.logger.Error("failed to record resolution", "key", rec.Key, "error", err)
	}
}

// videoTemplate fetches a VOD's thumbnail template when enrichment is
// available; otherwise there is nothing to probe.
func (s *ResolveService) videoTemplate(ctx context.Context, videoID string) string {
	if s.enricher == nil {
		return ""
	}
	info, err := s.enricher.VideoInfo(ctx, videoID)
	if err != nil {
		s.logger.Warn("video enrichment failed", "video_id", videoID, "error", err)
		return ""
	}
	return info.ThumbnailTemplate
}
