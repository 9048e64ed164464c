// Package v1handler implements version 1 of the HTTP API: the metric and
// scenario catalogs, the derived analysis tables and the sweep trigger.
package v1handler

import (
	"context"
	"errors"
	"net/http"

	"workforce/internal/engine"
	"workforce/pkg/logger"
	"workforce/pkg/serrors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Deps carries the dependencies the v1 handlers need.
type Deps struct {
	Engine engine.Engine
}

// Handler serves the v1 routes. It wraps an echo instance so the surrounding
// server can mount it as a plain http.Handler.
type Handler struct {
	deps Deps
	echo *echo.Echo
}

var _ http.Handler = (*Handler)(nil)

// New constructs the v1 handler and registers its routes. The sweep trigger
// is the only mutating endpoint and requires a valid bearer token.
func New(deps Deps, sec *SecHandler) *Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	h := &Handler{deps: deps, echo: e}

	v1 := e.Group("/v1")
	v1.GET("/metrics", h.Metrics)
	v1.GET("/metric-values", h.MetricValues)
	v1.GET("/scenarios", h.Scenarios)
	v1.GET("/scenarios/:id/strategy", h.Strategy)
	v1.GET("/spouse-employment", h.SpouseEmployment)
	v1.GET("/recruitment-gap", h.RecruitmentGap)
	v1.GET("/recruitment-plan", h.RecruitmentPlan)
	v1.GET("/flags", h.Flags)
	v1.POST("/sweep", h.Sweep, sec.Middleware())

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.echo.ServeHTTP(w, r)
}

// ErrorResponse is the JSON error envelope of the v1 API.
type ErrorResponse struct {
	// Code is the semantic error category, e.g. "NOT_FOUND".
	Code string `json:"code"`
	// Message is a human-readable explanation safe to expose to clients.
	Message string `json:"message"`
}

// ErrorStatusCode pairs an ErrorResponse with the HTTP status it is served
// under.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

// NewError maps an error to its API representation. Semantic errors keep
// their kind and message; anything else is masked as an internal error so
// storage details never leak to clients.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	logger.Error(ctx, err.Error())

	kind := serrors.ErrInternal
	message := ""

	var serr *serrors.Error
	var sentinel serrors.Kind
	switch {
	case errors.As(err, &serr) && serr.Kind() != nil:
		kind = serr.Kind()
		message = serr.Message()
	case errors.As(err, &sentinel):
		kind = sentinel
	}

	status := kindStatus(kind)
	if status == http.StatusInternalServerError {
		// never expose internals
		kind = serrors.ErrInternal
		message = ""
	}
	if message == "" {
		message = defaultMessage(status)
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response:   ErrorResponse{Code: kind.Error(), Message: message},
	}
}

// respondError renders an error through NewError onto the wire.
func (h *Handler) respondError(c echo.Context, err error) error {
	res := h.NewError(c.Request().Context(), err)

	return c.JSON(res.StatusCode, res.Response)
}

func kindStatus(kind serrors.Kind) int {
	switch kind {
	case serrors.ErrNotFound:
		return http.StatusNotFound
	case serrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case serrors.ErrBadRequest, serrors.ErrInvalidParameter:
		return http.StatusBadRequest
	case serrors.ErrConflict:
		return http.StatusConflict
	case serrors.ErrInsufficientData, serrors.ErrInconsistentShares, serrors.ErrUndefinedRatio:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable input"
	default:
		return "internal error"
	}
}
