package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.SetDocuments("blog", 2)
	pr.IncInvalidFile("blog")
	pr.IncLookup(LookupFound)
	pr.IncLookup(LookupMissing)
	pr.IncLookup(LookupMissing)
	pr.ObserveRender(3*time.Millisecond, true)
	pr.ObservePage("blog", 5*time.Millisecond, false)
	pr.ObserveBuild(time.Second, OutcomePartial)
	pr.IncReload()

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.documents.WithLabelValues("blog")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.lookups.WithLabelValues(LookupMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.reloads))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncReload()

	w := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hookpress_reloads_total")
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}
