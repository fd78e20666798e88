package payment

import (
	"context"
	"sync"
	"time"

	"debmarket/internal/logger"
	"debmarket/internal/metrics"
)

const DefaultPollInterval = 3 * time.Second

// UpdateFunc receives every status observation, terminal or not.
type UpdateFunc func(Snapshot)

// CancelFunc stops a polling session. Idempotent; once it returns, the
// session's UpdateFunc will not be invoked again.
type CancelFunc func()

// Poller watches a payment's status at a fixed cadence. The provider does
// not push updates, so each tick is one GetStatus call. Ticks are strictly
// sequential: the next interval starts when the previous tick finishes.
//
// The poller carries no deadline; the caller owns expiry.
type Poller struct {
	gateway Gateway
}

func NewPoller(gateway Gateway) *Poller {
	return &Poller{gateway: gateway}
}

type pollSession struct {
	mu     sync.Mutex
	active bool
	stop   chan struct{}
	once   sync.Once
}

// deliver invokes onUpdate under the session lock so that a concurrent
// cancel cannot return while a callback is still running. Returns false if
// the session was cancelled before delivery.
func (s *pollSession) deliver(onUpdate UpdateFunc, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	onUpdate(snap)
	return true
}

func (s *pollSession) cancel() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	s.once.Do(func() { close(s.stop) })
}

// Start begins polling paymentID every interval. A fetch error skips the
// tick and keeps the cadence; a terminal status stops the session after its
// delivery. The returned CancelFunc is safe to call any number of times,
// including after natural termination.
func (p *Poller) Start(paymentID string, interval time.Duration, onUpdate UpdateFunc) CancelFunc {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s := &pollSession{active: true, stop: make(chan struct{})}

	go p.run(s, paymentID, interval, onUpdate)

	return s.cancel
}

func (p *Poller) run(s *pollSession, paymentID string, interval time.Duration, onUpdate UpdateFunc) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		snap, err := p.gateway.GetStatus(ctx, paymentID)
		cancel()

		if err != nil {
			// Transient blips are tolerated: skip the tick, keep the cadence.
			logger.Error("payment status poll failed", "payment_id", paymentID, "error", err)
			metrics.RecordPollTick("error")
			timer.Reset(interval)
			continue
		}

		if !s.deliver(onUpdate, *snap) {
			return
		}

		if snap.Status.Terminal() {
			metrics.RecordPollTick("terminal")
			s.cancel()
			return
		}

		metrics.RecordPollTick("ok")
		timer.Reset(interval)
	}
}
