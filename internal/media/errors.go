package media

import "errors"

var (
	// ErrDownloadFailed indicates the media byte fetch returned a
	// non-success status.
	ErrDownloadFailed = errors.New("media download failed")
	// ErrTooLarge indicates the payload exceeds the configured max size.
	ErrTooLarge = errors.New("media payload too large")
)
