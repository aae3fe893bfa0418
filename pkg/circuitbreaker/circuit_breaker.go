package circuitbreaker

import (
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MaxNumOfFailingRequests is the minimum number of observed requests
	// required before the failing ratio is evaluated
	MaxNumOfFailingRequests = 10
	// FailingRatio is the ratio of failing requests that trips the breaker
	FailingRatio = 0.6
)

// NewCircuitBreaker returns a *gobreaker.CircuitBreaker guarding the requests
// towards the remote service identified by name. The breaker trips once the
// number of observed requests exceeds MaxNumOfFailingRequests and the failing
// ratio has met FailingRatio, and every state transition is logged.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"from": from.String(),
				"to":   to.String(),
			}).Warnf("circuit breaker %s changed state", name)
		},
	})
}
