package v1handler

import (
	"net/http"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Sweep refits the baseline forecasts and queues one evaluation job per
// scenario. The evaluations themselves run in the background; the response
// reports what was queued.
func (h *Handler) Sweep(c echo.Context) error {
	report, err := h.deps.Engine.Sweep(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusAccepted, report)
}

// Flags returns the data-quality flags of one run, defaulting to the most
// recently flagged run when no runId is given.
func (h *Handler) Flags(c echo.Context) error {
	var runID *domain.RunID
	if raw := c.QueryParam("runId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return h.respondError(c, serrors.Wrap(serrors.ErrBadRequest, err, "invalid run id %q", raw))
		}
		runID = &parsed
	}

	flags, err := h.deps.Engine.Flags(c.Request().Context(), runID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, flags)
}
