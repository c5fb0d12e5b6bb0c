package domain

import "errors"

// Domain errors.
var (
	// ErrEmptyInput is returned when an empty URL or handle is submitted.
	ErrEmptyInput = errors.New("empty URL or handle")

	// ErrNotTwitchMedia is returned when the input matches no known Twitch URL shape.
	ErrNotTwitchMedia = errors.New("not a recognizable Twitch URL or handle")

	// ErrNoPoster is returned when no poster candidate responds successfully.
	ErrNoPoster = errors.New("no poster available")

	// ErrMediaNotFound is returned when a media record cannot be found in the store.
	ErrMediaNotFound = errors.New("media record not found")

	// ErrNoQualities is returned when a quality list adapts to nothing usable.
	ErrNoQualities = errors.New("no usable quality levels")

	// ErrHelixDisabled is returned when Helix enrichment is requested without credentials.
	ErrHelixDisabled = errors.New("helix enrichment not configured")

	// ErrRateLimited is returned when rate limited by external services.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreClosed is returned when using a media store after Close.
	ErrStoreClosed = errors.New("media store is closed")
)

// MediaError wraps an error with media context.
type MediaError struct {
	Key MediaKey
	Op  string
	Err error
}

func (e *MediaError) Error() string {
	if e.Key != "" {
		return e.Op + " [" + e.Key.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(key MediaKey, op string, err error) *MediaError {
	return &MediaError{
		Key: key,
		Op:  op,
		Err: err,
	}
}
