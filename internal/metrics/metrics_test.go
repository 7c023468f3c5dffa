package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDomain(t *testing.T) {
	t.Parallel()

	c, err := NewCollector("", "")
	require.NoError(t, err)

	c.ObserveDomain("brands", "completed", 10, 2, 1)
	c.ObserveDomain("brands", "completed", 0, 12, 0)
	c.ObserveDomain("models", "skipped", 0, 0, 0)

	assert.InDelta(t, 10, testutil.ToFloat64(c.records.WithLabelValues("brands", "created")), 0)
	assert.InDelta(t, 14, testutil.ToFloat64(c.records.WithLabelValues("brands", "updated")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.records.WithLabelValues("brands", "failed")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.domains.WithLabelValues("brands", "completed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.domains.WithLabelValues("models", "skipped")), 0)
}

func TestObserveRun(t *testing.T) {
	t.Parallel()

	c, err := NewCollector("autoseed", "")
	require.NoError(t, err)

	c.ObserveRun(1500*time.Millisecond, "completed")

	assert.InDelta(t, 1.5, testutil.ToFloat64(c.duration), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("completed")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.runs))
}

func TestPush(t *testing.T) {
	t.Parallel()

	requests := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewCollector("seed-job", srv.URL)
	require.NoError(t, err)
	c.ObserveDomain("cities", "completed", 3, 0, 0)

	require.NoError(t, c.Push(context.Background()))
	r := <-requests
	assert.Equal(t, http.MethodPut, r.Method)
	assert.True(t, strings.HasSuffix(r.URL.Path, "/metrics/job/seed-job"), "got %s", r.URL.Path)
}

func TestPushFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewCollector("", srv.URL)
	require.NoError(t, err)

	require.Error(t, c.Push(context.Background()))
}

func TestPushWithoutURLIsNoop(t *testing.T) {
	t.Parallel()

	c, err := NewCollector("", "")
	require.NoError(t, err)

	require.NoError(t, c.Push(context.Background()))
	assert.NotNil(t, c.Registry())
}
