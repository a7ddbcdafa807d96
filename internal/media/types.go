package media

import (
	"context"
	"strings"
)

// Task is the unit of work to resolve and persist one remote media object.
// It is derived from an inbound message and discarded after completion.
type Task struct {
	MediaID  string
	Category string
	MimeType string
	Filename string
	Caption  string
}

// Saver persists the bytes behind a resolved media URL.
type Saver interface {
	// Save downloads url and writes it under the task's derived path,
	// returning the stored path. A non-success download status yields
	// ErrDownloadFailed.
	Save(ctx context.Context, url string, task Task) (string, error)
}

// FilePath derives the storage path relative to the media root:
// {category}/{filename if set else mediaID + "." + extension-from-mime}.
// A filename without an extension still gets the MIME-derived one.
func (t Task) FilePath() string {
	ext := extensionFromMime(t.MimeType)
	name := strings.TrimSpace(t.Filename)
	if name == "" {
		name = t.MediaID + "." + ext
	} else if !strings.Contains(name, ".") && ext != "" {
		name = name + "." + ext
	}
	return t.Category + "/" + name
}

// extensionFromMime keeps the mime subtype: everything before the first ';'
// and after the last '/'. A bare subtype passes through unchanged.
func extensionFromMime(mimeType string) string {
	clean, _, _ := strings.Cut(mimeType, ";")
	if idx := strings.LastIndex(clean, "/"); idx >= 0 {
		clean = clean[idx+1:]
	}
	return strings.TrimSpace(clean)
}
