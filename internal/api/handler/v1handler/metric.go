package v1handler

import (
	"net/http"
	"strconv"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/labstack/echo/v4"
)

// Metrics returns the metric catalog.
func (h *Handler) Metrics(c echo.Context) error {
	metrics, err := h.deps.Engine.Metrics(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, metrics)
}

// MetricValues returns stored value rows, filterable by metric name, category,
// value kind and year range.
func (h *Handler) MetricValues(c echo.Context) error {
	filter := storage.MetricValueFilter{
		MetricName: c.QueryParam("metric"),
		Category:   c.QueryParam("category"),
	}

	for _, raw := range c.QueryParams()["kind"] {
		kind, err := parseValueKind(raw)
		if err != nil {
			return h.respondError(c, err)
		}
		filter.Kinds = append(filter.Kinds, kind)
	}

	var err error
	if filter.FromYear, err = parseYear(c.QueryParam("from")); err != nil {
		return h.respondError(c, err)
	}
	if filter.ToYear, err = parseYear(c.QueryParam("to")); err != nil {
		return h.respondError(c, err)
	}

	values, err := h.deps.Engine.MetricValues(c.Request().Context(), filter)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, values)
}

func parseValueKind(raw string) (domain.ValueKind, error) {
	switch kind := domain.ValueKind(raw); kind {
	case domain.KindActual, domain.KindForecast, domain.KindLowerBound, domain.KindUpperBound:
		return kind, nil
	default:
		return "", serrors.With(serrors.ErrBadRequest, "unknown value kind %q", raw)
	}
}

// parseYear parses an optional year query parameter; empty means unset.
func parseYear(raw string) (domain.Year, error) {
	if raw == "" {
		return 0, nil
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrBadRequest, err, "invalid year %q", raw)
	}

	return domain.Year(year), nil
}

// parseID parses a required int64 identifier.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrBadRequest, err, "invalid id %q", raw)
	}

	return id, nil
}

// parseOptionalID parses an optional int64 identifier; empty means unset.
func parseOptionalID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}

	return parseID(raw)
}
