package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wagatehq/wagate/internal/graph"
	"github.com/wagatehq/wagate/internal/metrics"
	"github.com/wagatehq/wagate/internal/models"
)

// TextSender proxies an outbound text message to the provider.
type TextSender interface {
	SendText(ctx context.Context, to, body string) error
}

// SendHandler is the thin send-message proxy endpoint.
type SendHandler struct {
	sender TextSender
	logger *slog.Logger
}

func NewSendHandler(log *slog.Logger, sender TextSender) *SendHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SendHandler{
		sender: sender,
		logger: log.With(slog.String("handler", "send")),
	}
}

func (h *SendHandler) Register(e *echo.Echo) {
	e.POST("/send-message", h.Send)
}

// Send forwards the message to the provider send API, mirroring an
// upstream failure status back to the caller.
func (h *SendHandler) Send(c echo.Context) error {
	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.sender.SendText(c.Request().Context(), req.RecipientNumber, req.Message); err != nil {
		h.logger.Error("failed to send message",
			slog.String("recipient_number", req.RecipientNumber),
			slog.Any("error", err),
		)
		var statusErr *graph.StatusError
		if errors.As(err, &statusErr) {
			return echo.NewHTTPError(statusErr.Code, "failed to send message")
		}
		if isTimeout(err) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "upstream connection timed out")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send message")
	}

	metrics.MessagesSent.Add(1)
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Message sent",
	})
}
