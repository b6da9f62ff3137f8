package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/access"
	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/gateway"
	"github.com/TharinduNimesh/apiforge/internal/logger"
	"github.com/TharinduNimesh/apiforge/internal/metrics"
	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/TharinduNimesh/apiforge/internal/ratelimit"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/TharinduNimesh/apiforge/internal/util"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type invokeDeps struct {
	resolver   *auth.Resolver
	controller *access.Controller
	limiter    ratelimit.Limiter
	invoker    *gateway.Invoker
	apis       repository.ApisRepository
	endpoints  repository.EndpointsRepository
	parameters repository.ParametersRepository
	logs       repository.RequestLogsRepository
}

// invokeHandler runs one invocation end to end:
// credential -> endpoint -> method gate -> authorize -> rate limit ->
// build -> invoke -> log -> relay.
func invokeHandler(d invokeDeps) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		ctx := c.Request().Context()

		id := c.Param("id")
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "endpoint id is required"})
		}

		identity, err := d.resolver.Resolve(ctx, bearerToken(c))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingCredential):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no token provided"})
			case errors.Is(err, auth.ErrInvalidCredential):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired credential"})
			default:
				c.Logger().Errorf("credential resolution failed: %v", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
		}

		endpoint, err := d.endpoints.GetByID(ctx, id)
		if err != nil {
			c.Logger().Errorf("endpoint lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "catalog error"})
		}
		if endpoint == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "endpoint not found"})
		}

		// from here every outcome is logged against the resolved endpoint
		reject := func(status int, message string) error {
			d.writeLog(ctx, endpoint, identity, start, status, false)
			metrics.InvocationsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(status, map[string]string{"error": message})
		}

		// method gate before any other work
		if c.Request().Method != endpoint.Method {
			return reject(http.StatusMethodNotAllowed,
				"method not allowed - this endpoint only accepts "+endpoint.Method+" requests")
		}

		api, err := d.apis.GetByID(ctx, endpoint.ApiID)
		if err != nil {
			c.Logger().Errorf("api lookup failed: %v", err)
			return reject(http.StatusInternalServerError, "catalog error")
		}
		if api == nil {
			return reject(http.StatusNotFound, "endpoint not found")
		}

		decision, err := d.controller.Authorize(ctx, identity, api)
		if err != nil {
			switch {
			case errors.Is(err, access.ErrApiInactive):
				return reject(http.StatusForbidden, "this api is currently inactive")
			case errors.Is(err, access.ErrNoDepartmentMembership):
				return reject(http.StatusForbidden, "access denied - no department membership")
			case errors.Is(err, access.ErrNoActiveDepartment):
				return reject(http.StatusForbidden, "access denied - no active department membership")
			case errors.Is(err, access.ErrAccessDenied):
				return reject(http.StatusForbidden, "access denied to this api")
			default:
				c.Logger().Errorf("authorization failed: %v", err)
				return reject(http.StatusInternalServerError, "authorization error")
			}
		}

		if !decision.Unlimited {
			remaining, err := d.limiter.Allow(ctx, identity.UserID, api.ID, decision.RateLimit)
			if err != nil {
				if errors.Is(err, ratelimit.ErrLimitExceeded) {
					c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.RateLimit))
					c.Response().Header().Set("X-RateLimit-Remaining", "0")
					metrics.InvocationsTotal.WithLabelValues("rate_limited").Inc()
					d.writeLog(ctx, endpoint, identity, start, http.StatusTooManyRequests, false)
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"error": "rate limit exceeded - maximum " + strconv.Itoa(decision.RateLimit) + " requests per hour allowed",
					})
				}
				c.Logger().Errorf("rate limit check failed: %v", err)
				return reject(http.StatusInternalServerError, "rate limit error")
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.RateLimit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		params, err := d.parameters.ListByEndpoint(ctx, endpoint.ID)
		if err != nil {
			c.Logger().Errorf("parameter lookup failed: %v", err)
			return reject(http.StatusInternalServerError, "catalog error")
		}

		// inbound payload is read only after the caller is authorized
		values, err := readValues(c)
		if err != nil {
			return reject(http.StatusBadRequest, "malformed request body")
		}

		outbound, err := gateway.Build(api, endpoint, params, values)
		if err != nil {
			var missing *gateway.MissingParameterError
			if errors.As(err, &missing) {
				return reject(http.StatusBadRequest, missing.Error())
			}
			c.Logger().Errorf("request build failed: %v", err)
			return reject(http.StatusInternalServerError, "request build error")
		}

		resp, err := d.invoker.Do(ctx, outbound)
		if err != nil {
			d.writeLog(ctx, endpoint, identity, start, http.StatusServiceUnavailable, false)
			metrics.InvocationsTotal.WithLabelValues("upstream_error").Inc()
			return c.JSON(http.StatusOK, map[string]any{
				"statusCode": http.StatusServiceUnavailable,
				"data": map[string]any{
					"error":   "Service Unavailable",
					"message": "Failed to connect to the external API",
					"details": err.Error(),
				},
			})
		}

		d.writeLog(ctx, endpoint, identity, start, resp.StatusCode,
			resp.StatusCode >= 200 && resp.StatusCode < 400)

		if resp.ParseErr != nil {
			metrics.InvocationsTotal.WithLabelValues("upstream_error").Inc()
			return c.JSON(http.StatusOK, map[string]any{
				"statusCode": http.StatusBadGateway,
				"data": map[string]any{
					"error":   "Bad Gateway",
					"message": "Failed to parse the API response",
					"details": resp.ParseErr.Error(),
				},
			})
		}

		metrics.InvocationsTotal.WithLabelValues("ok").Inc()
		return c.JSON(http.StatusOK, map[string]any{
			"statusCode": resp.StatusCode,
			"headers":    resp.Headers,
			"data":       resp.Data,
		})
	}
}

// writeLog records the attempt; failures never surface to the caller.
func (d invokeDeps) writeLog(ctx context.Context, endpoint *model.Endpoint, identity auth.Identity, start time.Time, status int, success bool) {
	l := model.RequestLog{
		ID:             util.New(),
		ApiID:          endpoint.ApiID,
		EndpointID:     endpoint.ID,
		UserID:         identity.UserID,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		StatusCode:     status,
		IsSuccess:      success,
		Method:         identity.Method,
	}
	if err := d.logs.Insert(context.WithoutCancel(ctx), l); err != nil {
		logger.Log.Warn("request log write failed",
			zap.String("endpoint_id", endpoint.ID), zap.Error(err))
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// readValues extracts caller-supplied parameter values from a JSON or
// multipart body. A "name[]" part becomes an array value under "name".
func readValues(c echo.Context) (map[string]any, error) {
	values := map[string]any{}

	contentType := c.Request().Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return multipartValues(form)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func multipartValues(form *multipart.Form) (map[string]any, error) {
	values := map[string]any{}

	for name, fields := range form.Value {
		if arrayName, ok := strings.CutSuffix(name, "[]"); ok {
			arr := make([]any, 0, len(fields))
			for _, f := range fields {
				arr = append(arr, f)
			}
			values[arrayName] = arr
			continue
		}
		if len(fields) == 0 {
			continue
		}
		values[name] = decodeField(fields[0])
	}

	for name, headers := range form.File {
		if arrayName, ok := strings.CutSuffix(name, "[]"); ok {
			files := make([]gateway.FileValue, 0, len(headers))
			for _, fh := range headers {
				fv, err := readFile(fh)
				if err != nil {
					return nil, err
				}
				files = append(files, fv)
			}
			values[arrayName] = files
			continue
		}
		if len(headers) == 0 {
			continue
		}
		fv, err := readFile(headers[0])
		if err != nil {
			return nil, err
		}
		values[name] = fv
	}

	return values, nil
}

// decodeField keeps JSON-looking text fields structured.
func decodeField(s string) any {
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

func readFile(fh *multipart.FileHeader) (gateway.FileValue, error) {
	f, err := fh.Open()
	if err != nil {
		return gateway.FileValue{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return gateway.FileValue{}, err
	}
	return gateway.FileValue{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
