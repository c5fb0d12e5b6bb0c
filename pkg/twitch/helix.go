package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"

	"github.com/mediapeek/twitchpeek/internal/config"
	"github.com/mediapeek/twitchpeek/internal/domain"
	"github.com/mediapeek/twitchpeek/internal/prober"
)

// Client is the subset of the Helix API this package uses. It exists so
// tests can substitute a mock for the real helix client.
type Client interface {
	RequestAppAccessToken(scopes []string) (*helix.AppAccessTokenResponse, error)
	SetAppAccessToken(accessToken string)
	GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error)
	GetStreams(params *helix.StreamsParams) (*helix.StreamsResponse, error)
	GetVideos(params *helix.VideosParams) (*helix.VideosResponse, error)
}

// Enricher looks up channel and VOD metadata through the Helix API using
// an app access token. All lookups are best-effort for the caller: the
// resolve path treats any failure here as "no enrichment".
type Enricher struct {
	client Client
	logger *slog.Logger

	mu            sync.Mutex
	tokenAcquired bool
}

// NewEnricher creates an Enricher backed by the real Helix client.
// Returns ErrHelixDisabled when credentials are not configured.
func NewEnricher(cfg config.Twitch, logger *slog.Logger) (*Enricher, error) {
	if !cfg.HelixEnabled() {
		return nil, domain.ErrHelixDisabled
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("create helix client: %w", err)
	}

	return NewEnricherWithClient(client, logger), nil
}

// NewEnricherWithClient creates an Enricher with a caller-supplied client.
func NewEnricherWithClient(client Client, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		client: client,
		logger: logger,
	}
}

// ensureToken requests an app access token once, retrying transient
// failures. The helix client refreshes expired app tokens on its own after
// the first acquisition.
func (e *Enricher) ensureToken(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tokenAcquired {
		return nil
	}

	token, err := prober.RetryWithCheck(ctx, prober.DefaultRetryConfig(),
		func() (string, error) {
			resp, err := e.client.RequestAppAccessToken(nil)
			if err != nil {
				return "", fmt.Errorf("request app access token: %w", err)
			}
			if resp.ErrorStatus != 0 {
				return "", fmt.Errorf("helix auth: %d %s: %s", resp.ErrorStatus, resp.Error, resp.ErrorMessage)
			}
			return resp.Data.AccessToken, nil
		},
		func(err error) bool {
			// Credential rejections are permanent; network flakes are not.
			return !strings.Contains(err.Error(), "helix auth: 4")
		},
	)
	if err != nil {
		return err
	}

	e.client.SetAppAccessToken(token)
	e.tokenAcquired = true
	return nil
}

// ChannelInfo resolves a channel login to user metadata and live status.
func (e *Enricher) ChannelInfo(ctx context.Context, login string) (*domain.ChannelInfo, error) {
	if err := e.ensureToken(ctx); err != nil {
		return nil, err
	}

	users, err := e.client.GetUsers(&helix.UsersParams{
		Logins: []string{login},
	})
	if err != nil {
		return nil, fmt.Errorf("query user info: %w", err)
	}
	if len(users.Data.Users) == 0 {
		return nil, domain.NewMediaError(
			domain.Media{Kind: domain.KindChannel, Channel: login}.Key(),
			"channel info", domain.ErrMediaNotFound,
		)
	}

	user := users.Data.Users[0]
	info := &domain.ChannelInfo{
		UserID:          user.ID,
		Login:           user.Login,
		DisplayName:     user.DisplayName,
		Description:     user.Description,
		ProfileImageURL: user.ProfileImageURL,
		OfflineImageURL: user.OfflineImageURL,
	}

	// Live status is decoration on top of identity; a streams failure
	// still returns the user info.
	streams, err := e.client.GetStreams(&helix.StreamsParams{
		UserLogins: []string{login},
	})
	if err != nil {
		e.logger.Warn("helix streams lookup failed", "login", login, "error", err)
		return info, nil
	}
	if len(streams.Data.Streams) > 0 {
		stream := streams.Data.Streams[0]
		info.Live = true
		info.StreamTitle = stream.Title
		info.GameName = stream.GameName
		info.ViewerCount = stream.ViewerCount
		info.StartedAt = stream.StartedAt
	}

	return info, nil
}

// VideoInfo resolves a VOD ID to its metadata, including the thumbnail
// URL template used for poster candidates.
func (e *Enricher) VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error) {
	if err := e.ensureToken(ctx); err != nil {
		return nil, err
	}

	videos, err := e.client.GetVideos(&helix.VideosParams{
		IDs: []string{videoID},
	})
	if err != nil {
		return nil, fmt.Errorf("query video info: %w", err)
	}
	if len(videos.Data.Videos) == 0 {
		return nil, domain.NewMediaError(
			domain.Media{Kind: domain.KindVideo, VideoID: videoID}.Key(),
			"video info", domain.ErrMediaNotFound,
		)
	}

	video := videos.Data.Videos[0]
	return &domain.VideoInfo{
		ID:                video.ID,
		UserName:          video.UserName,
		Title:             video.Title,
		Duration:          video.Duration,
		CreatedAt:         video.CreatedAt,
		ThumbnailTemplate: video.ThumbnailURL,
	}, nil
}
