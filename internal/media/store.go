package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// MaxMediaBytes is the default cap on a single downloaded media payload.
const MaxMediaBytes int64 = 100 * 1024 * 1024

// LocalStore downloads media bytes and persists them on the local
// filesystem under a fixed root.
type LocalStore struct {
	root       string
	maxBytes   int64
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocalStore creates a store rooted at root. authHeader is sent on
// download requests (the provider CDN requires the same bearer token used
// for lookups).
func NewLocalStore(log *slog.Logger, root string, maxBytes int64, timeout time.Duration, authHeader string) *LocalStore {
	if log == nil {
		log = slog.Default()
	}
	if root == "" {
		root = "./media"
	}
	if maxBytes <= 0 {
		maxBytes = MaxMediaBytes
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LocalStore{
		root:       root,
		maxBytes:   maxBytes,
		authHeader: authHeader,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "media_store")),
	}
}

// Save implements Saver. Parent directories are created idempotently; a
// failed write may leave a partial file behind but is always reported as an
// error, never as success.
func (s *LocalStore) Save(ctx context.Context, url string, task Task) (string, error) {
	s.logger.Info("saving media",
		slog.String("media_id", task.MediaID),
		slog.String("category", task.Category),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	path := filepath.Join(s.root, filepath.FromSlash(task.FilePath()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	limited := &io.LimitedReader{R: resp.Body, N: s.maxBytes + 1}
	written, copyErr := io.Copy(file, limited)
	closeErr := file.Close()
	if copyErr != nil {
		return "", fmt.Errorf("write media file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close media file: %w", closeErr)
	}
	if written > s.maxBytes {
		return "", fmt.Errorf("%w: max %d bytes", ErrTooLarge, s.maxBytes)
	}

	s.logger.Info("media downloaded and saved",
		slog.String("media_id", task.MediaID),
		slog.String("path", path),
		slog.Int64("size_bytes", written),
	)
	return path, nil
}
