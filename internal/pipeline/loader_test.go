package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/waterflow-etl/internal/domain"
	"github.com/couchcryptid/waterflow-etl/internal/observability"
	"github.com/couchcryptid/waterflow-etl/internal/pipeline"
)

type countingReconciler struct {
	runs     atomic.Int64
	delay    time.Duration
	features []domain.FlowFeature
	err      error
}

func (c *countingReconciler) Reconcile(_ context.Context) ([]domain.FlowFeature, error) {
	c.runs.Add(1)
	time.Sleep(c.delay)
	return c.features, c.err
}

func newLoader(rec pipeline.FeatureReconciler) *pipeline.Loader {
	return pipeline.NewLoader(rec, discardLogger(), observability.NewMetricsForTesting())
}

func TestLoader_ConcurrentGetsShareOneRun(t *testing.T) {
	rec := &countingReconciler{
		delay:    50 * time.Millisecond,
		features: []domain.FlowFeature{{ID: "C1_canal"}},
	}
	loader := newLoader(rec)

	const callers = 8
	results := make([][]domain.FlowFeature, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			features, err := loader.Get(context.Background())
			assert.NoError(t, err)
			results[i] = features
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), rec.runs.Load())
	for _, features := range results {
		require.Len(t, features, 1)
		assert.Equal(t, "C1_canal", features[0].ID)
	}
}

func TestLoader_FailureIsCachedWithoutRetry(t *testing.T) {
	rec := &countingReconciler{err: errors.New("table unreachable")}
	loader := newLoader(rec)

	_, err := loader.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table unreachable")

	_, err2 := loader.Get(context.Background())
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
	assert.Equal(t, int64(1), rec.runs.Load())
}

func TestLoader_AbandonedGetDoesNotAbortRun(t *testing.T) {
	rec := &countingReconciler{
		delay:    100 * time.Millisecond,
		features: []domain.FlowFeature{{ID: "R1_river"}},
	}
	loader := newLoader(rec)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := loader.Get(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The run started by the abandoned caller still completes and serves
	// later callers from the cache.
	features, err := loader.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, int64(1), rec.runs.Load())
}

func TestLoader_Readiness(t *testing.T) {
	rec := &countingReconciler{features: []domain.FlowFeature{}}
	loader := newLoader(rec)

	require.Error(t, loader.CheckReadiness(context.Background()))
	assert.True(t, loader.LoadedAt().IsZero())

	_, err := loader.Get(context.Background())
	require.NoError(t, err)

	assert.NoError(t, loader.CheckReadiness(context.Background()))
	assert.False(t, loader.LoadedAt().IsZero())
}

func TestLoader_ReadinessAfterFailure(t *testing.T) {
	rec := &countingReconciler{err: errors.New("boom")}
	loader := newLoader(rec)

	_, err := loader.Get(context.Background())
	require.Error(t, err)

	err = loader.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
