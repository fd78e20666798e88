package payment

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debmarket/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

// scriptedGateway replays a fixed sequence of GetStatus results. After the
// script runs out it keeps returning the last entry.
type scriptedGateway struct {
	mu     sync.Mutex
	script []scriptEntry
	calls  int
}

type scriptEntry struct {
	status Status
	err    error
}

func (g *scriptedGateway) next() scriptEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	return g.script[i]
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *scriptedGateway) GetStatus(ctx context.Context, paymentID string) (*Snapshot, error) {
	e := g.next()
	if e.err != nil {
		return nil, e.err
	}
	return &Snapshot{ID: paymentID, Status: e.status, AmountCents: 5000, Method: MethodPix}, nil
}

func (g *scriptedGateway) CreatePayment(ctx context.Context, req CreateRequest) (*Intent, error) {
	return nil, errors.New("not implemented")
}

func (g *scriptedGateway) ConfirmPix(ctx context.Context, paymentID string) (*PixCharge, error) {
	return nil, errors.New("not implemented")
}

func (g *scriptedGateway) ConfirmCard(ctx context.Context, paymentID string) (*Snapshot, error) {
	return nil, errors.New("not implemented")
}

func collectUpdates() (UpdateFunc, func() []Snapshot) {
	var mu sync.Mutex
	var got []Snapshot
	fn := func(snap Snapshot) {
		mu.Lock()
		got = append(got, snap)
		mu.Unlock()
	}
	read := func() []Snapshot {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Snapshot, len(got))
		copy(out, got)
		return out
	}
	return fn, read
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	gw := &scriptedGateway{script: []scriptEntry{
		{status: StatusProcessing},
		{status: StatusProcessing},
		{status: StatusSucceeded},
	}}
	onUpdate, updates := collectUpdates()

	p := NewPoller(gw)
	cancel := p.Start("pi_1", 10*time.Millisecond, onUpdate)
	defer cancel()

	waitFor(t, func() bool {
		got := updates()
		return len(got) > 0 && got[len(got)-1].Status == StatusSucceeded
	})

	// The terminal observation is delivered and the poller self-stops:
	// no further GetStatus calls happen after it.
	got := updates()
	require.Len(t, got, 3)
	assert.Equal(t, StatusSucceeded, got[2].Status)

	calls := gw.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, gw.callCount())
}

func TestPollerSkipsFailedTick(t *testing.T) {
	gw := &scriptedGateway{script: []scriptEntry{
		{status: StatusProcessing},
		{err: errors.New("connection reset")},
		{status: StatusSucceeded},
	}}
	onUpdate, updates := collectUpdates()

	p := NewPoller(gw)
	cancel := p.Start("pi_2", 10*time.Millisecond, onUpdate)
	defer cancel()

	waitFor(t, func() bool {
		got := updates()
		return len(got) > 0 && got[len(got)-1].Status == StatusSucceeded
	})

	// The failed tick produces no update; polling continues afterwards.
	got := updates()
	assert.Len(t, got, 2)
	assert.Equal(t, StatusProcessing, got[0].Status)
	assert.Equal(t, StatusSucceeded, got[1].Status)
}

func TestPollerCancelStopsDelivery(t *testing.T) {
	gw := &scriptedGateway{script: []scriptEntry{
		{status: StatusProcessing},
	}}
	onUpdate, updates := collectUpdates()

	p := NewPoller(gw)
	cancel := p.Start("pi_3", 10*time.Millisecond, onUpdate)

	waitFor(t, func() bool { return len(updates()) > 0 })
	cancel()

	// Once cancel returns, no more callbacks arrive.
	seen := len(updates())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, len(updates()))
}

func TestPollerCancelIdempotent(t *testing.T) {
	gw := &scriptedGateway{script: []scriptEntry{
		{status: StatusSucceeded},
	}}
	onUpdate, updates := collectUpdates()

	p := NewPoller(gw)
	cancel := p.Start("pi_4", 10*time.Millisecond, onUpdate)

	waitFor(t, func() bool { return len(updates()) > 0 })

	// Cancel after natural termination, repeatedly. Must not panic.
	cancel()
	cancel()
	cancel()
}

func TestPollerZeroIntervalUsesDefault(t *testing.T) {
	gw := &scriptedGateway{script: []scriptEntry{
		{status: StatusProcessing},
	}}
	onUpdate, updates := collectUpdates()

	p := NewPoller(gw)
	cancel := p.Start("pi_5", 0, onUpdate)
	defer cancel()

	// Default cadence is seconds; nothing should arrive immediately.
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, updates())
}
