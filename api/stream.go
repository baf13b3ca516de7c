package api

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"kanban-board/domain"
)

// streamTasks serves the live board feed over server-sent events. Every event
// carries the complete task list, never a diff; clients reconcile by replacing
// their board content wholesale. EventSource cannot set headers, so a token
// query parameter is accepted as a fallback.
func streamTasks(stream Streamer, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			if token := c.QueryParam("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		userID, err := auth.UserIDFromAuthHeader(authHeader)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ctx, cancel := context.WithCancel(c.Request().Context())
		defer cancel()

		// Subscribe blocks until ctx is done; snapshots arrive on its
		// goroutine, so writes below never interleave.
		stream.Subscribe(ctx, userID, func(tasks []domain.Task) {
			data, err := sonic.ConfigStd.Marshal(tasks)
			if err != nil {
				c.Logger().Error(err)
				cancel()
				return
			}
			if _, err := c.Response().Write([]byte("data: ")); err != nil {
				cancel()
				return
			}
			if _, err := c.Response().Write(data); err != nil {
				cancel()
				return
			}
			if _, err := c.Response().Write([]byte("\n\n")); err != nil {
				cancel()
				return
			}
			flusher.Flush()
		})
		return nil
	}
}
