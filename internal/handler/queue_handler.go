package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcretail/internal/notify"
	"abcretail/pkg/logger"
)

type QueueHandler struct {
	notifier *notify.Notifier
}

func NewQueueHandler(notifier *notify.Notifier) *QueueHandler {
	return &QueueHandler{notifier: notifier}
}

// Enqueue handles the raw passthrough: the request body is sent to the
// named queue verbatim. Administrative/testing surface only.
func (h *QueueHandler) Enqueue(c echo.Context) error {
	log := logger.FromEcho(c)
	queue := c.Param("name")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unreadable request body"})
	}
	if len(body) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Message body is required"})
	}

	if err := h.notifier.PublishRaw(c.Request().Context(), queue, string(body)); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Message sent to queue", zap.String("queue", queue))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Message sent to queue '" + queue + "'",
	})
}
