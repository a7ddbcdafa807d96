package subscribers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var probeBody = []byte(`{"message":"webhook verification"}`)

// Service admits subscriber endpoints into the registry after a synchronous
// probe POST to the candidate URL.
type Service struct {
	registry   *Registry
	httpClient *http.Client
	logger     *slog.Logger
}

func NewService(log *slog.Logger, registry *Registry, timeout time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		registry:   registry,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "subscribers")),
	}
}

// Registry exposes the underlying registry for fan-out reads.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Register validates url with a probe POST and adds it to the registry.
// A duplicate yields ErrAlreadyRegistered; a failed probe yields
// ErrValidationFailed and leaves the registry untouched.
func (s *Service) Register(ctx context.Context, url string) error {
	if s.registry.Contains(url) {
		return ErrAlreadyRegistered
	}

	if err := s.probe(ctx, url); err != nil {
		s.logger.Warn("webhook validation failed",
			slog.String("url", url),
			slog.Any("error", err),
		)
		return err
	}

	if err := s.registry.Add(url); err != nil {
		return err
	}
	s.logger.Info("webhook registered", slog.String("url", url))
	return nil
}

func (s *Service) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(probeBody))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: probe status %d", ErrValidationFailed, resp.StatusCode)
	}
	return nil
}
