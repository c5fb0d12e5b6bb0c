package domain

import (
	"time"
)

// MediaKind distinguishes a live channel embed from a video-on-demand embed.
type MediaKind string

const (
	KindChannel MediaKind = "channel"
	KindVideo   MediaKind = "video"
)

// MediaKey uniquely identifies a piece of Twitch media across the system.
// Channels key as "channel:{login}", videos as "video:{id}".
type MediaKey string

// String returns the string representation of the MediaKey.
func (k MediaKey) String() string {
	return string(k)
}

// Media is the identity extracted from a Twitch URL or handle.
// Exactly one of Channel or VideoID is set, depending on Kind.
type Media struct {
	Kind    MediaKind `json:"kind"`
	Channel string    `json:"channel,omitempty"`
	VideoID string    `json:"video_id,omitempty"`
}

// Key returns the cache/store key for this media.
func (m Media) Key() MediaKey {
	if m.Kind == KindVideo {
		return MediaKey("video:" + m.VideoID)
	}
	return MediaKey("channel:" + m.Channel)
}

// Identifier returns the channel login or video ID, whichever is set.
func (m Media) Identifier() string {
	if m.Kind == KindVideo {
		return m.VideoID
	}
	return m.Channel
}

// Quality is a normalized Twitch playback quality level.
type Quality struct {
	// Level is the raw Twitch quality name, e.g. "chunked" or "720p60".
	Level string `json:"level"`
	// Height is the vertical resolution in pixels, 0 when unknown.
	Height int `json:"height,omitempty"`
	// FPS is the frame rate, 0 when unknown.
	FPS int `json:"fps,omitempty"`
	// Source marks the original broadcast quality ("chunked"/"source").
	Source bool `json:"source,omitempty"`
	// AudioOnly marks the audio_only level.
	AudioOnly bool `json:"audio_only,omitempty"`
	// Auto marks the adaptive "auto" level.
	Auto bool `json:"auto,omitempty"`
}

// ChannelInfo holds Helix metadata about a channel and its live stream, if any.
type ChannelInfo struct {
	UserID          string    `json:"user_id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Description     string    `json:"description,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	OfflineImageURL string    `json:"offline_image_url,omitempty"`
	Live            bool      `json:"live"`
	StreamTitle     string    `json:"stream_title,omitempty"`
	GameName        string    `json:"game_name,omitempty"`
	ViewerCount     int       `json:"viewer_count,omitempty"`
	StartedAt       time.Time `json:"started_at,omitzero"`
}

// VideoInfo holds Helix metadata about a VOD.
type VideoInfo struct {
	ID        string `json:"id"`
	UserName  string `json:"user_name,omitempty"`
	Title     string `json:"title,omitempty"`
	Duration  string `json:"duration,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	// ThumbnailTemplate is the Helix thumbnail URL with %{width}/%{height}
	// placeholders, used to derive poster candidates.
	ThumbnailTemplate string `json:"thumbnail_template,omitempty"`
}

// ResolvedMedia is the full resolution result: identity plus best-effort
// enrichment and poster. Enrichment fields stay zero when Helix is not
// configured or unavailable.
type ResolvedMedia struct {
	Media
	EmbedURL    string       `json:"embed_url"`
	PosterURL   string       `json:"poster_url,omitempty"`
	ChannelInfo *ChannelInfo `json:"channel_info,omitempty"`
	VideoInfo   *VideoInfo   `json:"video_info,omitempty"`
	ResolvedAt  time.Time    `json:"resolved_at"`
}

// MediaRecord is the persisted trace of a resolution, kept in the store.
// The poster cache itself is memory-only; records exist for history and
// the recent-media listing.
type MediaRecord struct {
	ID              string    `json:"id"`
	Key             MediaKey  `json:"key"`
	Kind            MediaKind `json:"kind"`
	Identifier      string    `json:"identifier"`
	DisplayName     string    `json:"display_name,omitempty"`
	Title           string    `json:"title,omitempty"`
	PosterURL       string    `json:"poster_url,omitempty"`
	ResolveCount    int       `json:"resolve_count"`
	FirstResolvedAt time.Time `json:"first_resolved_at"`
	LastResolvedAt  time.Time `json:"last_resolved_at"`
}
