package prometheus

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/pkg/metrics"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

// Collectors register with the global registry, so each constructor runs
// once per test binary.
func TestMain(m *testing.M) {
	metrics.InitRegistry()
	os.Exit(m.Run())
}

func TestReconcileMetrics(t *testing.T) {
	m, ok := NewReconcileMetrics().(*reconcileMetrics)
	require.True(t, ok)

	m.ObserveApply(reconcile.StateDone, 12*time.Millisecond)
	m.ObserveApply(reconcile.StateFailed, 3*time.Millisecond)
	m.ObserveStep(reconcile.StepDelete, time.Millisecond, nil)
	m.ObserveStep(reconcile.StepSet, time.Millisecond, errors.New("setparm failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.appliesTotal.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appliesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepsTotal.WithLabelValues("delete", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepsTotal.WithLabelValues("set", "error")))

	var nilMetrics *reconcileMetrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveApply(reconcile.StateDone, time.Second)
		nilMetrics.ObserveStep(reconcile.StepSet, time.Second, nil)
	})
}

func TestNetConfMetrics(t *testing.T) {
	m, ok := NewNetConfMetrics().(*netconfMetrics)
	require.True(t, ok)

	m.ObserveCommand("setparm", 4*time.Millisecond, nil)
	m.ObserveCommand("setparm", 4*time.Millisecond, nil)
	m.ObserveCommand("delparm", 4*time.Millisecond, errors.New("exit status 255"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("setparm", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("delparm", "error")))
}

func TestRuntimeMetrics(t *testing.T) {
	m, ok := NewRuntimeMetrics().(*runtimeMetrics)
	require.True(t, ok)

	m.ObserveSnapshot(time.Millisecond, 3, 1, nil)
	m.ObserveSnapshot(time.Millisecond, 0, 0, errors.New("net conf list failed"))
	m.SetOpenSessions(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotsTotal.WithLabelValues("error")))
	// a failed listing keeps the last good gauges
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedLines))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.openSessions))
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	m := NewHTTPMetrics()
	require.NotNil(t, m)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/shares/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, name := range []string{"media", "backup"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shares/"+name, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/shares/{name}", "404")))

	var nilMetrics *HTTPMetrics
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, nilMetrics.Middleware(next))
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 1.5, milliseconds(1500*time.Microsecond))
	assert.Equal(t, "success", status(nil))
	assert.Equal(t, "error", status(errors.New("x")))
}
