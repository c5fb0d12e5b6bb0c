package twitch

import (
	"errors"
	"testing"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

func TestParseQuality(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  domain.Quality
		ok    bool
	}{
		{"chunked", "chunked", domain.Quality{Level: "chunked", Source: true}, true},
		{"source", "source", domain.Quality{Level: "source", Source: true}, true},
		{"auto", "auto", domain.Quality{Level: "auto", Auto: true}, true},
		{"audio only underscore", "audio_only", domain.Quality{Level: "audio_only", AudioOnly: true}, true},
		{"audio only spaced", "Audio Only", domain.Quality{Level: "audio_only", AudioOnly: true}, true},
		{"1080p60", "1080p60", domain.Quality{Level: "1080p60", Height: 1080, FPS: 60}, true},
		{"720p implies 30fps", "720p", domain.Quality{Level: "720p", Height: 720, FPS: 30}, true},
		{"160p30", "160p30", domain.Quality{Level: "160p30", Height: 160, FPS: 30}, true},
		{"fps suffix", "720p60fps", domain.Quality{Level: "720p60fps", Height: 720, FPS: 60}, true},
		{"mixed case", "720P60", domain.Quality{Level: "720p60", Height: 720, FPS: 60}, true},
		{"empty", "", domain.Quality{}, false},
		{"garbage", "ultra-hd", domain.Quality{}, false},
		{"bare number", "720", domain.Quality{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuality(tt.level)
			if ok != tt.ok {
				t.Fatalf("ParseQuality(%q) ok = %v, want %v", tt.level, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseQuality(%q) = %+v, want %+v", tt.level, got, tt.want)
			}
		})
	}
}

func TestAdaptQualities(t *testing.T) {
	levels := []string{"360p30", "chunked", "ultra-hd", "720p60", "audio_only", "720P60", "160p30"}

	qualities, err := AdaptQualities(levels)
	if err != nil {
		t.Fatalf("AdaptQualities failed: %v", err)
	}

	wantOrder := []string{"chunked", "720p60", "360p30", "160p30", "audio_only"}
	if len(qualities) != len(wantOrder) {
		t.Fatalf("got %d qualities, want %d: %+v", len(qualities), len(wantOrder), qualities)
	}
	for i, level := range wantOrder {
		if qualities[i].Level != level {
			t.Errorf("qualities[%d] = %q, want %q", i, qualities[i].Level, level)
		}
	}
}

func TestAdaptQualities_AllUnparseable(t *testing.T) {
	_, err := AdaptQualities([]string{"ultra-hd", "", "potato"})
	if !errors.Is(err, domain.ErrNoQualities) {
		t.Errorf("err = %v, want ErrNoQualities", err)
	}
}

func TestBestMatch(t *testing.T) {
	qualities, err := AdaptQualities([]string{"chunked", "1080p60", "720p60", "480p30", "audio_only", "auto"})
	if err != nil {
		t.Fatalf("AdaptQualities failed: %v", err)
	}

	tests := []struct {
		name      string
		maxHeight int
		wantLevel string
	}{
		{"exact fit", 720, "720p60"},
		{"between levels", 900, "720p60"},
		{"above all", 2160, "1080p60"},
		{"below all falls to lowest", 144, "480p30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestMatch(qualities, tt.maxHeight)
			if !ok {
				t.Fatal("BestMatch found nothing")
			}
			if got.Level != tt.wantLevel {
				t.Errorf("BestMatch(%d) = %q, want %q", tt.maxHeight, got.Level, tt.wantLevel)
			}
		})
	}
}

func TestBestMatch_OnlySource(t *testing.T) {
	qualities := []domain.Quality{{Level: "chunked", Source: true}}

	got, ok := BestMatch(qualities, 480)
	if !ok {
		t.Fatal("BestMatch found nothing")
	}
	if got.Level != "chunked" {
		t.Errorf("level = %q, want chunked", got.Level)
	}
}

func TestBestMatch_AudioOnly(t *testing.T) {
	qualities := []domain.Quality{{Level: "audio_only", AudioOnly: true}}

	if _, ok := BestMatch(qualities, 1080); ok {
		t.Error("BestMatch should not select audio_only")
	}
}
