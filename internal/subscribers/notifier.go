package subscribers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wagatehq/wagate/internal/metrics"
	"github.com/wagatehq/wagate/internal/models"
)

// Notifier pushes a copy of each processed event to every registered
// subscriber. Best effort: one attempt per subscriber, failures logged and
// never surfaced to the caller.
type Notifier struct {
	registry   *Registry
	httpClient *http.Client
	logger     *slog.Logger
}

func NewNotifier(log *slog.Logger, registry *Registry, timeout time.Duration) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		registry:   registry,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "notifier")),
	}
}

// Notify serializes event once and POSTs it to every registered URL.
// Deliveries run concurrently and are all joined before Notify returns.
func (n *Notifier) Notify(ctx context.Context, event *models.Event) {
	urls := n.registry.List()
	if len(urls) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal event for fan-out", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if err := n.deliver(ctx, url, payload); err != nil {
				metrics.DeliveryFailures.Add(1)
				n.logger.Warn("subscriber delivery failed",
					slog.String("url", url),
					slog.Any("error", err),
				)
				return
			}
			n.logger.Info("event delivered to subscriber", slog.String("url", url))
		}(url)
	}
	wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{URL: url, Code: resp.StatusCode}
	}
	return nil
}

// DeliveryError reports a non-success status from one subscriber endpoint.
type DeliveryError struct {
	URL  string
	Code int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("subscriber returned status %d", e.Code)
}
