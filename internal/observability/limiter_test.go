package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warriorzz/kord/internal/models"
	"github.com/warriorzz/kord/internal/version"
	"github.com/warriorzz/kord/ratelimit"
)

// gatherFamily finds a metric family whose name contains the given fragment.
func gatherFamily(t *testing.T, fragment string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if strings.Contains(mf.GetName(), fragment) {
			return mf
		}
	}
	return nil
}

func TestLimiterMetrics_ObservationsReachPrometheus(t *testing.T) {
	metrics := models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}
	obs := models.ObservabilityConfig{ServiceName: "test"}

	provider, err := Setup(metrics, obs, version.Info{})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	sink, err := NewLimiterMetrics()
	require.NoError(t, err)

	sink.ObserveAdmission(25*time.Millisecond, "admitted")
	sink.ObserveAdmission(0, "cancelled")
	sink.ObserveCompletion("accepted")

	assert.NotNil(t, gatherFamily(t, "ratelimit_admissions"),
		"admission counter must be exported")
	assert.NotNil(t, gatherFamily(t, "ratelimit_completions"),
		"completion counter must be exported")
	assert.NotNil(t, gatherFamily(t, "ratelimit_admission_wait"),
		"wait histogram must be exported")
}

func TestLimiterMetrics_WiresIntoLimiter(t *testing.T) {
	metrics := models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}
	obs := models.ObservabilityConfig{ServiceName: "test"}

	provider, err := Setup(metrics, obs, version.Info{})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	sink, err := NewLimiterMetrics()
	require.NoError(t, err)

	limiter := ratelimit.New(ratelimit.WithMetricsSink(sink))
	err = limiter.Consume(context.Background(), &ratelimit.Request{Route: "GET /gateway:"}, func(token *ratelimit.Token) error {
		return token.Complete(ratelimit.Outcome{Kind: ratelimit.OutcomeAccepted})
	})
	require.NoError(t, err)

	family := gatherFamily(t, "ratelimit_completions")
	require.NotNil(t, family)

	found := false
	for _, m := range family.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "kind" && label.GetValue() == "accepted" {
				found = true
			}
		}
	}
	assert.True(t, found, "completion must be labeled with its outcome kind")
}
