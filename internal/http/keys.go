package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/TharinduNimesh/apiforge/internal/util"
	"github.com/labstack/echo/v4"
)

type issueKeyReq struct {
	Name      string `json:"name"`
	ExpiresIn int    `json:"expiresIn"` // days
}

// issueKeyHandler mints a long-lived API key for the authenticated user.
// Only a session credential may mint keys.
func issueKeyHandler(resolver *auth.Resolver, keys repository.APIKeysRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req issueKeyReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if req.Name == "" || req.ExpiresIn <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		}

		identity, err := resolver.Resolve(c.Request().Context(), bearerToken(c))
		if err != nil {
			if errors.Is(err, auth.ErrMissingCredential) || errors.Is(err, auth.ErrInvalidCredential) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			c.Logger().Errorf("credential resolution failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
		}
		if identity.Method != model.RequestMethodWeb {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		now := time.Now()
		key := model.APIKey{
			ID:         util.New(),
			Name:       req.Name,
			Key:        util.NewAPIKey(),
			UserID:     identity.UserID,
			ExpiresAt:  now.AddDate(0, 0, req.ExpiresIn),
			LastUsedAt: now,
		}
		if err := keys.Insert(c.Request().Context(), key); err != nil {
			c.Logger().Errorf("api key insert failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"key":     key.Key,
			"expires": key.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}
