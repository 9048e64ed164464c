package v1handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workforce/internal/api/handler/v1handler"
	"workforce/internal/engine"
	"workforce/pkg/domain"
	"workforce/pkg/gap"
	"workforce/pkg/logger"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// fakeEngine serves canned values; err, when set, is returned by every method.
type fakeEngine struct {
	err       error
	report    *engine.SweepReport
	metrics   []domain.Metric
	values    []domain.MetricObservation
	scenarios []domain.ScenarioDefinition
	retention []domain.RetentionResult
	gaps      []domain.RecruitmentGapResult
	strategy  *gap.StrategyComparison
	plan      *gap.Plan
	flags     []domain.Flag

	valueFilter    storage.MetricValueFilter
	analysisFilter storage.AnalysisFilter
	strategyID     int64
	flagsRunID     *domain.RunID
	sweeps         int
}

func (f *fakeEngine) Sweep(context.Context) (*engine.SweepReport, error) {
	f.sweeps++

	return f.report, f.err
}

func (f *fakeEngine) EvaluateScenario(context.Context, int64, domain.RunID) error { return f.err }

func (f *fakeEngine) Metrics(context.Context) ([]domain.Metric, error) {
	return f.metrics, f.err
}

func (f *fakeEngine) MetricValues(_ context.Context,
	filter storage.MetricValueFilter) ([]domain.MetricObservation, error) {
	f.valueFilter = filter

	return f.values, f.err
}

func (f *fakeEngine) Scenarios(context.Context) ([]domain.ScenarioDefinition, error) {
	return f.scenarios, f.err
}

func (f *fakeEngine) RetentionResults(_ context.Context,
	filter storage.AnalysisFilter) ([]domain.RetentionResult, error) {
	f.analysisFilter = filter

	return f.retention, f.err
}

func (f *fakeEngine) GapResults(_ context.Context,
	filter storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error) {
	f.analysisFilter = filter

	return f.gaps, f.err
}

func (f *fakeEngine) Strategy(_ context.Context, scenarioID int64) (*gap.StrategyComparison, error) {
	f.strategyID = scenarioID

	return f.strategy, f.err
}

func (f *fakeEngine) RecruitmentPlan(context.Context) (*gap.Plan, error) {
	return f.plan, f.err
}

func (f *fakeEngine) Flags(_ context.Context, runID *domain.RunID) ([]domain.Flag, error) {
	f.flagsRunID = runID

	return f.flags, f.err
}

func newTestHandler(t *testing.T, eng *fakeEngine) *v1handler.Handler {
	t.Helper()

	_, pubPEM := genRSAKeys(t)
	sec, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: pubPEM})
	require.NoError(t, err)

	return v1handler.New(v1handler.Deps{Engine: eng}, sec)
}

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestNewError_InternalOnPlainError(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	res := h.NewError(ctx, errors.New("boom"))
	require.NotNil(t, res)
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_KindSentinelDirect_NotFound(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	// Pass the Kind sentinel directly
	res := h.NewError(ctx, serrors.ErrNotFound)
	require.Equal(t, 404, res.StatusCode)
	require.Equal(t, serrors.ErrNotFound.Error(), res.Response.Code)
	require.Equal(t, "resource not found", res.Response.Message)
}

func TestNewError_SemanticWithMessage_BadRequest(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	err := serrors.With(serrors.ErrBadRequest, "invalid payload: missing year")
	res := h.NewError(ctx, err)
	require.Equal(t, 400, res.StatusCode)
	require.Equal(t, serrors.ErrBadRequest.Error(), res.Response.Code)
	require.Equal(t, "invalid payload: missing year", res.Response.Message)
}

func TestNewError_SemanticWrap_Unauthorized(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	cause := errors.New("bad token")
	err := serrors.Wrap(serrors.ErrUnauthorized, cause, "unauthorized")
	res := h.NewError(ctx, err)
	require.Equal(t, 401, res.StatusCode)
	require.Equal(t, serrors.ErrUnauthorized.Error(), res.Response.Code)
	// Should include provided message, not the cause
	require.Equal(t, "unauthorized", res.Response.Message)
}

func TestNewError_InternalKind_GeneratesInternal(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	res := h.NewError(ctx, serrors.KindOnly(serrors.ErrInternal))
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_EngineKind_Unprocessable(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})
	ctx := context.Background()

	err := fmt.Errorf("could not derive recruitment plan: %w",
		serrors.With(serrors.ErrUndefinedRatio, "immigration is zero"))
	res := h.NewError(ctx, err)
	require.Equal(t, 422, res.StatusCode)
	require.Equal(t, serrors.ErrUndefinedRatio.Error(), res.Response.Code)
	require.Equal(t, "immigration is zero", res.Response.Message)
}

func TestHandler_MetricValues_FilterParsing(t *testing.T) {
	eng := &fakeEngine{values: []domain.MetricObservation{}}
	h := newTestHandler(t, eng)

	rec := doRequest(h, http.MethodGet,
		"/v1/metric-values?metric=Total+workers&kind=forecast&kind=actual&from=2024&to=2028")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Total workers", eng.valueFilter.MetricName)
	assert.Equal(t, []domain.ValueKind{domain.KindForecast, domain.KindActual}, eng.valueFilter.Kinds)
	assert.Equal(t, domain.Year(2024), eng.valueFilter.FromYear)
	assert.Equal(t, domain.Year(2028), eng.valueFilter.ToYear)
}

func TestHandler_MetricValues_BadKind(t *testing.T) {
	h := newTestHandler(t, &fakeEngine{})

	rec := doRequest(h, http.MethodGet, "/v1/metric-values?kind=prophecy")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res v1handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, serrors.ErrBadRequest.Error(), res.Code)
}

func TestHandler_Scenarios(t *testing.T) {
	eng := &fakeEngine{scenarios: []domain.ScenarioDefinition{
		{ID: 1, PartnerEmploymentRate: 0.3, IsDefault: true},
	}}
	h := newTestHandler(t, eng)

	rec := doRequest(h, http.MethodGet, "/v1/scenarios")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.ScenarioDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].IsDefault)
}

func TestHandler_RecruitmentGap_Filter(t *testing.T) {
	eng := &fakeEngine{gaps: []domain.RecruitmentGapResult{}}
	h := newTestHandler(t, eng)

	rec := doRequest(h, http.MethodGet, "/v1/recruitment-gap?scenarioId=4&year=2027")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), eng.analysisFilter.ScenarioID)
	assert.Equal(t, domain.Year(2027), eng.analysisFilter.Year)

	rec = doRequest(h, http.MethodGet, "/v1/recruitment-gap?scenarioId=four")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Strategy_NotFound(t *testing.T) {
	eng := &fakeEngine{err: serrors.With(serrors.ErrNotFound, "scenario not found")}
	h := newTestHandler(t, eng)

	rec := doRequest(h, http.MethodGet, "/v1/scenarios/42/strategy")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(42), eng.strategyID)
}

func TestHandler_Sweep_RequiresToken(t *testing.T) {
	eng := &fakeEngine{report: &engine.SweepReport{}}

	priv, pubPEM := genRSAKeys(t)
	sec, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: pubPEM})
	require.NoError(t, err)
	h := v1handler.New(v1handler.Deps{Engine: eng}, sec)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sweep", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, eng.sweeps)

	now := time.Now()
	token := signJWTRS256(t, priv, "planner", now, now.Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/v1/sweep", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, eng.sweeps)
}

func TestHandler_Flags_RunIDParsing(t *testing.T) {
	eng := &fakeEngine{flags: []domain.Flag{}}
	h := newTestHandler(t, eng)

	rec := doRequest(h, http.MethodGet, "/v1/flags")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, eng.flagsRunID)

	rec = doRequest(h, http.MethodGet, "/v1/flags?runId=6cc9b8f2-58b2-4d5c-9a2e-2b7e6f8a9c4d")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, eng.flagsRunID)
	assert.Equal(t, "6cc9b8f2-58b2-4d5c-9a2e-2b7e6f8a9c4d", eng.flagsRunID.String())

	rec = doRequest(h, http.MethodGet, "/v1/flags?runId=nope")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
