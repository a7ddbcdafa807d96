package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wagatehq/wagate/internal/models"
	"github.com/wagatehq/wagate/internal/subscribers"
)

// Registrar admits subscriber endpoints after probe validation.
type Registrar interface {
	Register(ctx context.Context, url string) error
}

// SubscriptionsHandler manages subscriber endpoint registration.
type SubscriptionsHandler struct {
	registrar Registrar
	logger    *slog.Logger
}

func NewSubscriptionsHandler(log *slog.Logger, registrar Registrar) *SubscriptionsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SubscriptionsHandler{
		registrar: registrar,
		logger:    log.With(slog.String("handler", "subscriptions")),
	}
}

func (h *SubscriptionsHandler) Register(e *echo.Echo) {
	e.POST("/register-webhook", h.RegisterWebhook)
}

// RegisterWebhook validates and admits one subscriber URL. Duplicates get a
// conflict; a failed probe rejects the registration with no side effects.
func (h *SubscriptionsHandler) RegisterWebhook(c echo.Context) error {
	var req models.RegisterWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.registrar.Register(c.Request().Context(), req.URL); err != nil {
		if errors.Is(err, subscribers.ErrAlreadyRegistered) {
			return echo.NewHTTPError(http.StatusConflict, "webhook already registered")
		}
		if errors.Is(err, subscribers.ErrValidationFailed) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("webhook registration failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Webhook registered successfully",
	})
}
