package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcretail/pkg/config"
)

func TestTrackDBOperation(t *testing.T) {
	// Safe to call before initialization.
	assert.NotPanics(t, func() {
		TrackDBOperation("select")(time.Now())
	})

	InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "abcretail_test"}})
	require.NotNil(t, DbOperationDuration)

	TrackDBOperation("select")(time.Now())
	TrackDBOperation("insert")(time.Now())
	TrackDBOperation("select")(time.Now())

	// One series per operation type.
	assert.Equal(t, 2, testutil.CollectAndCount(DbOperationDuration))
}
