package v1handler

import (
	"net/http"

	"workforce/pkg/storage"

	"github.com/labstack/echo/v4"
)

// Scenarios returns the scenario catalog ordered by partner employment rate.
func (h *Handler) Scenarios(c echo.Context) error {
	scenarios, err := h.deps.Engine.Scenarios(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, scenarios)
}

// analysisFilter parses the shared scenarioId and year query parameters.
func analysisFilter(c echo.Context) (storage.AnalysisFilter, error) {
	var filter storage.AnalysisFilter
	var err error

	if filter.ScenarioID, err = parseOptionalID(c.QueryParam("scenarioId")); err != nil {
		return filter, err
	}
	if filter.Year, err = parseYear(c.QueryParam("year")); err != nil {
		return filter, err
	}

	return filter, nil
}

// SpouseEmployment returns the per-segment retention outcomes.
func (h *Handler) SpouseEmployment(c echo.Context) error {
	filter, err := analysisFilter(c)
	if err != nil {
		return h.respondError(c, err)
	}

	rows, err := h.deps.Engine.RetentionResults(c.Request().Context(), filter)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, rows)
}

// RecruitmentGap returns the per-year recruitment gap rows.
func (h *Handler) RecruitmentGap(c echo.Context) error {
	filter, err := analysisFilter(c)
	if err != nil {
		return h.respondError(c, err)
	}

	rows, err := h.deps.Engine.GapResults(c.Request().Context(), filter)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, rows)
}

// Strategy compares single-focused and household-focused recruitment for one
// scenario.
func (h *Handler) Strategy(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}

	comparison, err := h.deps.Engine.Strategy(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, comparison)
}

// RecruitmentPlan returns the per-year recruitment plan derived from the
// historical migration patterns.
func (h *Handler) RecruitmentPlan(c echo.Context) error {
	plan, err := h.deps.Engine.RecruitmentPlan(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, plan)
}
