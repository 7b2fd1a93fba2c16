package stats

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
	TERABYTE
)

const namespace = "swapd"

var (
	// OrdersAdded counts the limit orders accepted by the order book.
	OrdersAdded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_added_total",
		Help:      "Number of limit orders accepted by the order book.",
	}, []string{"market"})
	// OrdersClosed counts the orders removed from the book, by reason.
	OrdersClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_closed_total",
		Help:      "Number of orders removed from the book.",
	}, []string{"market", "status"})
	// OpenOrders tracks the live orders per market.
	OpenOrders = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_orders",
		Help:      "Number of live orders in the book.",
	}, []string{"market"})
	// SwapTransitions counts swap session status changes.
	SwapTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swap_transitions_total",
		Help:      "Number of swap sessions entering a status.",
	}, []string{"status"})
	// LiveSwaps tracks the sessions held in memory by the registry.
	LiveSwaps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_swaps",
		Help:      "Number of swap sessions held by the registry.",
	})
	// ConnectedParties tracks the parties with a live relay channel.
	ConnectedParties = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_parties",
		Help:      "Number of parties with a live relay channel.",
	})
	// DeliveryFailures counts relay events that could not be delivered.
	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_delivery_failures_total",
		Help:      "Number of relay events dropped for offline or slow parties.",
	})
)

func init() {
	prometheus.MustRegister(
		OrdersAdded, OrdersClosed, OpenOrders,
		SwapTransitions, LiveSwaps, ConnectedParties, DeliveryFailures,
	)
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process. Once the context is done, the default prometheus
// metrics are dumped to a stats file in the given directory.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpDir string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if err := DumpPrometheusDefaults(dumpDir); err != nil {
					log.WithError(err).Warn("failed to dump prometheus metrics")
				}
				return
			}
		}
	}()
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults write default Prometheus metrics to a file
func DumpPrometheusDefaults(dir string) error {
	file, err := os.OpenFile(
		filepath.Join(dir, "stats"),
		os.O_APPEND|os.O_CREATE|os.O_RDWR,
		0644,
	)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Infof("Num of go routines: %v", runtime.NumGoroutine())
}
