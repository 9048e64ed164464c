package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"

	"workforce/internal/engine"
	"workforce/internal/worker"
	"workforce/pkg/domain"
	"workforce/pkg/gap"
	"workforce/pkg/logger"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// fakeEngine records EvaluateScenario calls and returns a canned error.
type fakeEngine struct {
	scenarioID int64
	runID      domain.RunID
	calls      int
	err        error
}

func (f *fakeEngine) EvaluateScenario(_ context.Context, scenarioID int64, runID domain.RunID) error {
	f.calls++
	f.scenarioID = scenarioID
	f.runID = runID

	return f.err
}

func (f *fakeEngine) Sweep(context.Context) (*engine.SweepReport, error) { return nil, nil }
func (f *fakeEngine) Metrics(context.Context) ([]domain.Metric, error)  { return nil, nil }
func (f *fakeEngine) MetricValues(context.Context, storage.MetricValueFilter) ([]domain.MetricObservation, error) {
	return nil, nil
}
func (f *fakeEngine) Scenarios(context.Context) ([]domain.ScenarioDefinition, error) {
	return nil, nil
}
func (f *fakeEngine) RetentionResults(context.Context, storage.AnalysisFilter) ([]domain.RetentionResult, error) {
	return nil, nil
}
func (f *fakeEngine) GapResults(context.Context, storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error) {
	return nil, nil
}
func (f *fakeEngine) Strategy(context.Context, int64) (*gap.StrategyComparison, error) {
	return nil, nil
}
func (f *fakeEngine) RecruitmentPlan(context.Context) (*gap.Plan, error) { return nil, nil }
func (f *fakeEngine) Flags(context.Context, *domain.RunID) ([]domain.Flag, error) {
	return nil, nil
}

func makeJob(id int64, scenarioID int64, runID string) *river.Job[engine.EvaluateScenarioArgs] {
	return &river.Job[engine.EvaluateScenarioArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   engine.EvaluateScenarioArgs{ScenarioID: scenarioID, RunID: runID},
	}
}

func TestEvaluatorWorker_Work_Success(t *testing.T) {
	eng := &fakeEngine{}
	w, err := worker.NewEvaluatorWorker(eng)
	require.NoError(t, err)

	runID := uuid.New()
	require.NoError(t, w.Work(context.Background(), makeJob(1, 7, runID.String())))
	require.Equal(t, 1, eng.calls)
	require.Equal(t, int64(7), eng.scenarioID)
	require.Equal(t, runID, eng.runID)
}

func TestEvaluatorWorker_Work_NotFoundCancels(t *testing.T) {
	eng := &fakeEngine{err: serrors.With(serrors.ErrNotFound, "scenario 7 not found")}
	w, err := worker.NewEvaluatorWorker(eng)
	require.NoError(t, err)

	workErr := w.Work(context.Background(), makeJob(2, 7, uuid.NewString()))
	require.Error(t, workErr)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, workErr, &cancelErr)
}

func TestEvaluatorWorker_Work_MalformedRunIDCancels(t *testing.T) {
	eng := &fakeEngine{}
	w, err := worker.NewEvaluatorWorker(eng)
	require.NoError(t, err)

	workErr := w.Work(context.Background(), makeJob(3, 7, "not-a-uuid"))
	require.Error(t, workErr)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, workErr, &cancelErr)
	require.Zero(t, eng.calls)
}

func TestEvaluatorWorker_Work_TransientErrorRetries(t *testing.T) {
	eng := &fakeEngine{err: errors.New("db down")}
	w, err := worker.NewEvaluatorWorker(eng)
	require.NoError(t, err)

	workErr := w.Work(context.Background(), makeJob(4, 7, uuid.NewString()))
	require.Error(t, workErr)
	var cancelErr *river.JobCancelError
	require.False(t, errors.As(workErr, &cancelErr))
}
