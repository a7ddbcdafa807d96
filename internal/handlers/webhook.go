package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wagatehq/wagate/internal/graph"
	"github.com/wagatehq/wagate/internal/models"
)

// Coordinator processes one parsed inbound event end to end.
type Coordinator interface {
	Handle(ctx context.Context, event *models.Event) error
}

// WebhookHandler receives WhatsApp Cloud API webhook deliveries.
type WebhookHandler struct {
	coordinator Coordinator
	logger      *slog.Logger
}

func NewWebhookHandler(log *slog.Logger, coordinator Coordinator) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		coordinator: coordinator,
		logger:      log.With(slog.String("handler", "webhook")),
	}
}

// Register registers the webhook route.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook", h.Receive)
}

// Receive parses the event envelope and hands it to the coordinator. The
// sender always gets a terminal response; individual message failures are
// invisible here by design.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		h.logger.Warn("invalid webhook payload", slog.Any("error", err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "Invalid event payload",
		})
	}

	h.logger.Info("received event",
		slog.String("object", event.Object),
		slog.Int("entries", len(event.Entry)),
	)

	if err := h.coordinator.Handle(c.Request().Context(), &event); err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Event processed successfully",
	})
}

// mapError categorizes a coordinator-level failure: connection timeouts to
// a collaborator map to 504, surfaced upstream HTTP errors to 400, anything
// else to 500.
func (h *WebhookHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("event processing failed", slog.Any("error", err))

	if isTimeout(err) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"status":  "error",
			"message": "Upstream connection timed out",
		})
	}
	if isUpstreamStatus(err) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "Upstream request failed",
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"status":  "error",
		"message": "Event processing failed",
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isUpstreamStatus(err error) bool {
	var statusErr *graph.StatusError
	return errors.As(err, &statusErr) || errors.Is(err, graph.ErrMediaLookup)
}
