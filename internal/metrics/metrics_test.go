package metrics_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/metrics"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_Exploration(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	src := memory.New(contract.Fixture())
	explorer := runtime.NewExplorer(src, runtime.WithLifecycleHooks(m.Hooks()))

	// 1 -> {2 -> 4, 3 -> 5, 6}; with maxDepth 2 the grandchildren are cut.
	_, err := explorer.Explore(context.Background(), domain.NodeKey{ConversationID: 1, DialogueID: 1}, 2)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Explorations.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.NodesMaterialized))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BranchesPruned.WithLabelValues("depth")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SourceErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExplorationDuration))
}

func TestHooks_Cycle(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	src := memory.New(contract.Fixture())
	explorer := runtime.NewExplorer(src, runtime.WithLifecycleHooks(m.Hooks()))

	_, err := explorer.Explore(context.Background(), domain.NodeKey{ConversationID: 2, DialogueID: 1}, 7)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BranchesPruned.WithLabelValues("cycle")))
}

func TestHooks_Outcomes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	src := memory.New(contract.Fixture())
	resolver := runtime.NewOutcomeResolver(src, runtime.WithLifecycleHooks(m.Hooks()))

	_, err := resolver.Resolve(context.Background(), contract.Fixture().Checks[0], domain.NodeKey{ConversationID: 1, DialogueID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutcomesResolved.WithLabelValues("SUCCESS")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutcomesResolved.WithLabelValues("FAILURE")))
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.ObserveRequest("/tree", 200)
	m.ObserveRequest("/tree", 200)
	m.ObserveRequest("/tree", 404)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/tree", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/tree", "404")))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}

func TestHooks_CanceledExplorationIsNotASourceError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	explorer := runtime.NewExplorer(memory.New(contract.Fixture()), runtime.WithLifecycleHooks(m.Hooks()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := explorer.Explore(ctx, domain.NodeKey{ConversationID: 1, DialogueID: 1}, 7)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Explorations.WithLabelValues("canceled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Explorations.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SourceErrors))
}
