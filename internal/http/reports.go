package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/labstack/echo/v4"
)

// listRequestsHandler lists RequestLog rows. Non-admin callers only see
// their own; admins see everything and may filter by user_id.
func listRequestsHandler(resolver *auth.Resolver, logs repository.RequestLogsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		identity, err := resolver.Resolve(ctx, bearerToken(c))
		if err != nil {
			if errors.Is(err, auth.ErrMissingCredential) || errors.Is(err, auth.ErrInvalidCredential) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			c.Logger().Errorf("credential resolution failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
		}

		filter := repository.RequestLogFilter{
			UserID: identity.UserID,
			Limit:  50,
		}
		if identity.IsAdmin {
			filter.UserID = c.QueryParam("user_id")
		}

		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				filter.Limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				filter.Offset = n
			}
		}
		if v := c.QueryParam("api_id"); v != "" {
			filter.ApiID = v
		}
		if v := c.QueryParam("success"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				filter.Success = &b
			}
		}

		rows, err := logs.List(ctx, filter)
		if err != nil {
			c.Logger().Errorf("request log list failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   filter.Limit,
			"offset":  filter.Offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
