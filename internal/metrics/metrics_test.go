package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObserveRequest("/api/deck/{model}/{view}", http.MethodGet, 200, 12*time.Millisecond)
	c.ObserveRequest("/api/deck/{model}/{view}", http.MethodGet, 200, 3*time.Millisecond)
	c.ObserveRequest("/assets/{name}", http.MethodGet, 404, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("/api/deck/{model}/{view}", "GET", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("/assets/{name}", "GET", "404")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.RequestDuration))
}

func TestNew_TwiceOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.IncRateLimited()
	second.IncRateLimited()
	assert.InDelta(t, 2, testutil.ToFloat64(first.RateLimited), 0)
}

func TestCacheLookupAndFeatures(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	c.CacheLookup("deck", true)
	c.CacheLookup("deck", false)
	c.CacheLookup("deck", false)
	c.SetFeatures("segment", 1234)

	assert.InDelta(t, 1, testutil.ToFloat64(c.CacheLookups.WithLabelValues("deck", "hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.CacheLookups.WithLabelValues("deck", "miss")), 0)
	assert.InDelta(t, 1234, testutil.ToFloat64(c.DatasetFeatures.WithLabelValues("segment")), 0)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest("/", "GET", 200, time.Second)
		c.CacheLookup("deck", true)
		c.IncRateLimited()
		c.SetFeatures("grid", 1)
	})
	assert.NotNil(t, c.Handler())
}

func TestHandler(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	c.SetFeatures("grid", 42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `riskmap_dataset_features{model="grid"} 42`), body)
}
