package circuitbreaker

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MinRequests is the number of requests within an interval below which the
	// breaker never trips.
	MinRequests uint32 = 10
	// FailureRatio is the ratio of failed requests that trips the breaker.
	FailureRatio = 0.6
	// OpenTimeout is how long the breaker stays open before letting a probe
	// request through.
	OpenTimeout = 30 * time.Second
)

// New returns a breaker that trips once at least MinRequests were made and
// the FailureRatio is reached. State changes are logged.
func New(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Debugf("circuitbreaker: %s moved from %s to %s", name, from, to)
		},
	})
}
