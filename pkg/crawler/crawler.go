package crawler

import (
	"github.com/pocket-wallet/pocketd/pkg/explorer"
	"golang.org/x/time/rate"
)

// Event are emitted through a channel during observation.
type Event interface {
	Type() EventType
}

// Observable represent object that can be observed on the blockchain.
type Observable interface {
	observe(
		explorerSvc explorer.Service,
		errChan chan error,
		eventChan chan Event,
		observableStatus *observableStatus,
		rateLimiter *rate.Limiter,
	)
	key() string
}

// Service is the interface for Crawler
type Service interface {
	Start()
	Stop()
	AddObservable(observable Observable)
	RemoveObservable(observable Observable)
	GetEventChannel() chan Event
}
