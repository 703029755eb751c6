package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/metrics"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, opts ...httpAdapter.Option) http.Handler {
	t.Helper()
	eng, err := arbor.New("", arbor.WithSource(memory.New(contract.Fixture())))
	require.NoError(t, err)
	return httpAdapter.NewHandler(eng, opts...)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetTree(t *testing.T) {
	w := get(t, newHandler(t), "/tree?conversationId=1&dialogueId=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var tree domain.TreeNode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Equal(t, 6, tree.Size())
	require.NotNil(t, tree.SkillCheck)
	assert.Equal(t, 11, tree.SkillCheck.Difficulty)
}

func TestGetTree_MaxDepth(t *testing.T) {
	h := newHandler(t)

	w := get(t, h, "/tree?conversationId=1&dialogueId=1&maxDepth=0")
	require.Equal(t, http.StatusOK, w.Code)
	var tree domain.TreeNode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Empty(t, tree.Children)

	w = get(t, newHandler(t, httpAdapter.WithDefaultDepth(2)), "/tree?conversationId=1&dialogueId=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Equal(t, 4, tree.Size())
}

func TestStatusMapping(t *testing.T) {
	h := newHandler(t)
	tests := []struct {
		target string
		want   int
	}{
		{"/tree?dialogueId=1", http.StatusBadRequest},
		{"/tree?conversationId=abc&dialogueId=1", http.StatusBadRequest},
		{"/tree?conversationId=0&dialogueId=1", http.StatusBadRequest},
		{"/tree?conversationId=1&dialogueId=1&maxDepth=-2", http.StatusBadRequest},
		{"/tree?conversationId=1&dialogueId=99", http.StatusNotFound},
		{"/connections?conversationId=1&dialogueId=99", http.StatusNotFound},
		{"/outcomes?conversationId=1&dialogueId=99", http.StatusNotFound},
		{"/outcomes?conversationId=1", http.StatusBadRequest},
		{"/dialogues/search?actor=Kim", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, h, tt.target)
			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetOutcomes(t *testing.T) {
	w := get(t, newHandler(t), "/outcomes?conversationId=1&dialogueId=1")
	require.Equal(t, http.StatusOK, w.Code)

	var outcomes []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcomes))
	require.Len(t, outcomes, 3)
	assert.Equal(t, "SUCCESS", outcomes[0]["outcomeType"])
	assert.Equal(t, "doorOpen", outcomes[0]["checkFlag"])
	assert.Equal(t, float64(10), outcomes[0]["difficulty"])
}

func TestGetConnections(t *testing.T) {
	w := get(t, newHandler(t), "/connections?conversationId=1&dialogueId=1")
	require.Equal(t, http.StatusOK, w.Code)

	var view domain.Connections
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Links, 3)
	assert.Len(t, view.Alternates, 1)
	assert.Len(t, view.Outcomes, 3)
}

func TestCatalog(t *testing.T) {
	h := newHandler(t)

	w := get(t, h, "/actors")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Garte","Harry","Kim Kitsuragi"]`, w.Body.String())

	w = get(t, h, "/dialogues/search?actor=harry&keyword=door")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"actor":"Harry","dialogue":"The door swings open with a groan."}]`, w.Body.String())

	w = get(t, h, "/dialogues/search?keyword=zeppelin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := get(t, newHandler(t, httpAdapter.WithVersion("0.1.0\n")), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"0.1.0"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(httpAdapter.RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpAdapter.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newHandler(t).ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(httpAdapter.RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"route"})
	reg.MustRegister(requests)

	var routes []string
	h := newHandler(t, httpAdapter.WithMetrics(reg, func(route string, status int) {
		routes = append(routes, route)
		requests.WithLabelValues(route).Inc()
	}))

	get(t, h, "/actors")
	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_requests_total{route="/actors"} 1`)
	assert.Equal(t, []string{"/actors", "/metrics"}, routes)
}

func TestMetrics_NotMountedByDefault(t *testing.T) {
	w := get(t, newHandler(t), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics_UnknownPathsShareOneSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := newHandler(t, httpAdapter.WithMetrics(reg, m.ObserveRequest))

	for i := 0; i < 50; i++ {
		w := get(t, h, fmt.Sprintf("/scan/%d", i))
		require.Equal(t, http.StatusNotFound, w.Code)
	}
	get(t, h, "/actors")

	assert.Equal(t, 2, testutil.CollectAndCount(m.Requests))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.Requests.WithLabelValues(httpAdapter.UnmatchedRoute, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/actors", "200")))
}
