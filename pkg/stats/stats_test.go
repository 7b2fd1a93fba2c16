package stats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/pkg/stats"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(stats.SwapTransitions.WithLabelValues("CREATED"))
	stats.SwapTransitions.WithLabelValues("CREATED").Inc()
	after := testutil.ToFloat64(stats.SwapTransitions.WithLabelValues("CREATED"))
	require.Equal(t, before+1, after)
}

func TestDumpPrometheusDefaults(t *testing.T) {
	dir := t.TempDir()
	stats.LiveSwaps.Set(3)

	require.NoError(t, stats.DumpPrometheusDefaults(dir))

	buf, err := os.ReadFile(filepath.Join(dir, "stats"))
	require.NoError(t, err)
	require.Contains(t, string(buf), "swapd_live_swaps")
}
