package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/access"
	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/labstack/echo/v4"
)

type apiResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"baseUrl"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// listApisHandler returns the APIs the caller can see: everything for
// admins, the active granted set for everyone else. No membership means an
// empty list, not an error.
func listApisHandler(resolver *auth.Resolver, controller *access.Controller, apis repository.ApisRepository) echo.HandlerFunc {
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

		ids, all, err := controller.AccessibleApiIDs(ctx, identity)
		if err != nil {
			c.Logger().Errorf("accessible api lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		var rows []model.Api
		if all {
			rows, err = apis.ListAll(ctx)
		} else {
			rows, err = apis.ListActiveByIDs(ctx, ids)
		}
		if err != nil {
			c.Logger().Errorf("api list failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		out := make([]apiResponse, 0, len(rows))
		for _, a := range rows {
			out = append(out, apiResponse{
				ID:        a.ID,
				Name:      a.Name,
				BaseURL:   a.BaseURL,
				Type:      a.Type.String(),
				IsActive:  a.IsActive,
				CreatedAt: a.CreatedAt,
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}
