package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	log "github.com/sirupsen/logrus"
	"github.com/pocket-wallet/pocketd/pkg/explorer"
)

const (
	New       Status = "NEW"
	Waiting   Status = "WAITING"
	Processed Status = "PROCESSED"
)

type Status string

type observableStatus struct {
	sync.RWMutex
	status Status
}

func NewObservableStatus() *observableStatus {
	return &observableStatus{
		status: New,
	}
}

func (o *observableStatus) Get() Status {
	o.RLock()
	defer o.RUnlock()
	return o.status
}

func (o *observableStatus) Set(status Status) {
	o.Lock()
	defer o.Unlock()
	o.status = status
}

// AddressObservable watches the unspent set of a single address.
type AddressObservable struct {
	Address string
}

func (a *AddressObservable) observe(
	explorerSvc explorer.Service,
	errChan chan error,
	eventChan chan Event,
	observableStatus *observableStatus,
	rateLimiter *rate.Limiter,
) {
	if a == nil {
		return
	}

	observableStatus.Set(Waiting)
	if err := rateLimiter.Wait(context.Background()); err != nil {
		errChan <- err
		return
	}

	unspents, err := explorerSvc.GetUnspents(context.Background(), a.Address)
	if err != nil {
		// keep the observable schedulable after a failed poll
		observableStatus.Set(Processed)
		errChan <- err
		return
	}

	observableStatus.Set(Processed)

	eventChan <- AddressEvent{
		EventType: AddressActivity,
		Address:   a.Address,
		Utxos:     unspents,
	}
}

func (a *AddressObservable) key() string {
	return a.Address
}

type observableHandler struct {
	observable       Observable
	explorerSvc      explorer.Service
	wg               *sync.WaitGroup
	ticker           *time.Ticker
	eventChan        chan Event
	errChan          chan error
	stopChan         chan int
	observableStatus *observableStatus
	rateLimiter      *rate.Limiter
}

func newObservableHandler(
	observable Observable,
	explorerSvc explorer.Service,
	wg *sync.WaitGroup,
	interval int,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
) *observableHandler {
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	stopChan := make(chan int, 1)

	return &observableHandler{
		observable,
		explorerSvc,
		wg,
		ticker,
		eventChan,
		errChan,
		stopChan,
		NewObservableStatus(),
		rateLimiter,
	}
}

func (oh *observableHandler) start() {
	oh.logAction("start")
	oh.wg.Add(1)
	for {
		select {
		case <-oh.ticker.C:
			if oh.observableStatus.Get() != Waiting {
				oh.observable.observe(
					oh.explorerSvc,
					oh.errChan,
					oh.eventChan,
					oh.observableStatus,
					oh.rateLimiter,
				)
			}
		case <-oh.stopChan:
			oh.ticker.Stop()
			close(oh.stopChan)
			return
		}
	}
}

func (oh *observableHandler) stop() {
	oh.logAction("stop")
	oh.stopChan <- 1
	oh.wg.Done()
}

func (oh *observableHandler) logAction(action string) {
	log.Debugf("%s observing address: %v", action, oh.observable.key())
}
