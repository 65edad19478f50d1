package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recon-cli/internal/model"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveRun(OutcomeSuccess, 2*time.Second)
	r.ObserveRun(OutcomeSuccess, time.Second)
	r.ObserveRun(OutcomeConfigError, time.Millisecond)
	r.ObserveDecision(model.DecisionReport{
		Matches: []model.MatchRecord{
			{MatchType: model.MatchDirect},
			{MatchType: model.MatchDirect},
			{MatchType: model.MatchNone},
		},
		CriticalProducts: []model.CriticalProduct{{Material: "A"}},
	})
	r.ObserveMatches([]model.MatchRecord{{MatchType: model.MatchBoth}})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeConfigError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.matches.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.matches.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.matches.WithLabelValues("both")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.critical))

	n, err := testutil.GatherAndCount(reg, "recon_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun(OutcomeError, time.Second)
		r.ObserveMatches([]model.MatchRecord{{MatchType: model.MatchDirect}})
		r.ObserveDecision(model.DecisionReport{})
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
