package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"debmarket/internal/logger"
	"debmarket/internal/metrics"

	"github.com/google/uuid"
)

type State string

const (
	StateAwaitingPayment State = "awaiting_payment"
	StateAwaitingCard    State = "awaiting_card"
	StateSucceeded       State = "succeeded"
	StateExpired         State = "expired"
	StateCanceled        State = "canceled"
)

var (
	ErrAmountBelowMinimum = errors.New("deposit amount below minimum")
	ErrInvalidMethod      = errors.New("invalid payment method")
	ErrDepositNotFound    = errors.New("deposit session not found")
	ErrDepositFinished    = errors.New("deposit session already finished")
	ErrNotExpired         = errors.New("deposit session is not expired")
	ErrNotAwaitingCard    = errors.New("deposit session is not awaiting card confirmation")
	ErrPixCodeUnavailable = errors.New("pix code not available yet")
)

// Wallet is the balance store credited on confirmed deposits. reference is
// the provider payment ID; the store rejects a second credit for the same
// reference.
type Wallet interface {
	Deposit(ctx context.Context, userID int, amountCents int64, reference string) error
}

// Notifier delivers user-facing notifications. Optional.
type Notifier interface {
	SendDepositConfirmed(ctx context.Context, email string, amountCents int64) error
}

type DepositConfig struct {
	PollInterval    time.Duration
	TTL             time.Duration
	MinAmountCents  int64
	SessionRetainer time.Duration
}

func (c *DepositConfig) withDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MinAmountCents <= 0 {
		c.MinAmountCents = 1000
	}
	if c.SessionRetainer <= 0 {
		c.SessionRetainer = time.Hour
	}
}

// DepositSession is one deposit attempt. State moves strictly forward:
// awaiting_payment/awaiting_card -> succeeded | expired | canceled, except
// that an expired PIX session may be regenerated back to awaiting_payment
// with a fresh payment intent.
type DepositSession struct {
	ID            string
	UserID        int
	UserEmail     string
	AmountCents   int64
	Method        Method
	PaymentID     string
	ClientSecret  string
	QRCodeImage   string
	CopyPasteCode string
	State         State
	LastStatus    Status
	CreatedAt     time.Time
	ExpiresAt     time.Time

	mu         sync.Mutex
	credited   bool
	cancelPoll CancelFunc
	expiry     *time.Timer
	finishedAt time.Time
}

// DepositView is the client-facing snapshot of a session.
type DepositView struct {
	ID            string    `json:"id"`
	AmountCents   int64     `json:"amount_cents"`
	Method        Method    `json:"method"`
	State         State     `json:"state"`
	LastStatus    Status    `json:"last_status,omitempty"`
	PaymentID     string    `json:"payment_id"`
	ClientSecret  string    `json:"client_secret,omitempty"`
	QRCodeImage   string    `json:"qr_code_image,omitempty"`
	CopyPasteCode string    `json:"copy_paste_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func (s *DepositSession) view() DepositView {
	return DepositView{
		ID:            s.ID,
		AmountCents:   s.AmountCents,
		Method:        s.Method,
		State:         s.State,
		LastStatus:    s.LastStatus,
		PaymentID:     s.PaymentID,
		ClientSecret:  s.ClientSecret,
		QRCodeImage:   s.QRCodeImage,
		CopyPasteCode: s.CopyPasteCode,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}

// View returns a consistent snapshot of the session.
func (s *DepositSession) View() DepositView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// DepositService owns deposit sessions end to end: intent creation, PIX code
// materialization, status polling, expiry, and the one wallet credit per
// confirmed payment.
type DepositService struct {
	gateway  Gateway
	poller   *Poller
	wallet   Wallet
	notifier Notifier
	cfg      DepositConfig

	mu       sync.Mutex
	sessions map[string]*DepositSession
	stop     chan struct{}
	stopOnce sync.Once
}

func NewDepositService(gateway Gateway, wallet Wallet, notifier Notifier, cfg DepositConfig) *DepositService {
	cfg.withDefaults()

	d := &DepositService{
		gateway:  gateway,
		poller:   NewPoller(gateway),
		wallet:   wallet,
		notifier: notifier,
		cfg:      cfg,
		sessions: make(map[string]*DepositSession),
		stop:     make(chan struct{}),
	}

	go d.janitor()

	return d
}

// Begin validates the request, creates a payment intent and opens a session.
// Validation or gateway failure leaves no session behind, so the caller
// stays at amount selection.
func (d *DepositService) Begin(ctx context.Context, userID int, email string, amountCents int64, method Method) (DepositView, error) {
	if !method.Valid() {
		return DepositView{}, ErrInvalidMethod
	}
	if amountCents < d.cfg.MinAmountCents {
		return DepositView{}, ErrAmountBelowMinimum
	}

	intent, err := d.gateway.CreatePayment(ctx, CreateRequest{
		AmountCents: amountCents,
		Method:      method,
		UserID:      userID,
		UserEmail:   email,
		Description: "Wallet deposit",
	})
	if err != nil {
		return DepositView{}, err
	}

	now := time.Now()
	sess := &DepositSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserEmail:   email,
		AmountCents: amountCents,
		Method:      method,
		PaymentID:   intent.ID,
		LastStatus:  intent.Status,
		CreatedAt:   now,
		ExpiresAt:   now.Add(d.cfg.TTL),
	}

	if method == MethodPix {
		charge, err := d.gateway.ConfirmPix(ctx, intent.ID)
		if err != nil {
			return DepositView{}, err
		}
		if !charge.Ready() {
			return DepositView{}, ErrPixCodeUnavailable
		}
		sess.QRCodeImage = charge.QRCodeImage
		sess.CopyPasteCode = charge.CopyPasteCode
		sess.State = StateAwaitingPayment
	} else {
		sess.ClientSecret = intent.ClientSecret
		sess.State = StateAwaitingCard
	}

	d.mu.Lock()
	d.sessions[sess.ID] = sess
	d.mu.Unlock()
	metrics.DepositSessionsActive.Inc()

	d.arm(sess)

	logger.Info("deposit session opened",
		"session_id", sess.ID,
		"user_id", userID,
		"method", string(method),
		"amount_cents", amountCents,
	)

	return sess.View(), nil
}

// arm starts the expiry timer and, for PIX, the status poller. The expiry
// deadline is independent of polling: it fires after the wall-clock budget
// no matter how many ticks have run.
func (d *DepositService) arm(sess *DepositSession) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	d.armLocked(sess)
}

func (d *DepositService) armLocked(sess *DepositSession) {
	sess.expiry = time.AfterFunc(time.Until(sess.ExpiresAt), func() {
		d.expire(sess)
	})

	if sess.Method == MethodPix {
		sess.cancelPoll = d.poller.Start(sess.PaymentID, d.cfg.PollInterval, func(snap Snapshot) {
			d.handleUpdate(sess, snap)
		})
	}
}

func (d *DepositService) handleUpdate(sess *DepositSession, snap Snapshot) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// A late tick from a cancelled or replaced polling session must not
	// move the state machine.
	if sess.State != StateAwaitingPayment || snap.ID != sess.PaymentID {
		return
	}

	sess.LastStatus = snap.Status

	switch snap.Status {
	case StatusSucceeded:
		d.settleLocked(sess)
	case StatusCanceled:
		sess.stopExpiryLocked()
		sess.State = StateCanceled
		sess.finishedAt = time.Now()
		metrics.RecordDeposit(string(StateCanceled), string(sess.Method))
		logger.Info("deposit canceled by provider", "session_id", sess.ID, "payment_id", sess.PaymentID)
	}
}

// settleLocked credits the wallet exactly once per confirmed payment.
// Caller holds sess.mu.
func (d *DepositService) settleLocked(sess *DepositSession) {
	if sess.credited {
		return
	}
	sess.credited = true
	sess.stopExpiryLocked()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.wallet.Deposit(ctx, sess.UserID, sess.AmountCents, sess.PaymentID); err != nil {
		// The payment is confirmed; a failed credit is a reconciliation
		// problem, not a reason to report failure to the user.
		logger.Error("wallet credit failed",
			"session_id", sess.ID,
			"payment_id", sess.PaymentID,
			"user_id", sess.UserID,
			"error", err,
		)
	} else {
		metrics.RecordWalletTransaction("deposit")
	}

	sess.State = StateSucceeded
	sess.finishedAt = time.Now()
	metrics.RecordDeposit(string(StateSucceeded), string(sess.Method))

	if d.notifier != nil {
		email, amount := sess.UserEmail, sess.AmountCents
		go func() {
			nctx, ncancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer ncancel()
			if err := d.notifier.SendDepositConfirmed(nctx, email, amount); err != nil {
				logger.Error("deposit notification failed", "error", err)
			}
		}()
	}

	logger.Info("deposit succeeded",
		"session_id", sess.ID,
		"payment_id", sess.PaymentID,
		"amount_cents", sess.AmountCents,
	)
}

func (d *DepositService) expire(sess *DepositSession) {
	sess.mu.Lock()
	if sess.State != StateAwaitingPayment && sess.State != StateAwaitingCard {
		sess.mu.Unlock()
		return
	}
	sess.State = StateExpired
	sess.finishedAt = time.Now()
	cancel := sess.cancelPoll
	sess.cancelPoll = nil
	method := sess.Method
	sess.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	metrics.RecordDeposit(string(StateExpired), string(method))
	logger.Info("deposit session expired", "session_id", sess.ID)
}

func (s *DepositSession) stopExpiryLocked() {
	if s.expiry != nil {
		s.expiry.Stop()
	}
}

func (d *DepositService) find(sessionID string, userID int) (*DepositSession, error) {
	d.mu.Lock()
	sess, ok := d.sessions[sessionID]
	d.mu.Unlock()
	if !ok || sess.UserID != userID {
		return nil, ErrDepositNotFound
	}
	return sess, nil
}

func (d *DepositService) Get(sessionID string, userID int) (DepositView, error) {
	sess, err := d.find(sessionID, userID)
	if err != nil {
		return DepositView{}, err
	}
	return sess.View(), nil
}

// Cancel aborts a session before success. Canceling an already canceled or
// expired session is a no-op; a succeeded session cannot be canceled.
func (d *DepositService) Cancel(sessionID string, userID int) (DepositView, error) {
	sess, err := d.find(sessionID, userID)
	if err != nil {
		return DepositView{}, err
	}

	sess.mu.Lock()
	switch sess.State {
	case StateSucceeded:
		view := sess.view()
		sess.mu.Unlock()
		return view, ErrDepositFinished
	case StateCanceled:
		view := sess.view()
		sess.mu.Unlock()
		return view, nil
	}

	sess.State = StateCanceled
	sess.finishedAt = time.Now()
	sess.stopExpiryLocked()
	cancel := sess.cancelPoll
	sess.cancelPoll = nil
	view := sess.view()
	sess.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	metrics.RecordDeposit(string(StateCanceled), string(view.Method))
	logger.Info("deposit canceled by user", "session_id", sessionID, "user_id", userID)

	return view, nil
}

// Regenerate replaces the payment intent of an expired PIX session with a
// fresh one and restarts polling. The abandoned intent is not canceled at
// the provider; it simply ages out.
func (d *DepositService) Regenerate(ctx context.Context, sessionID string, userID int) (DepositView, error) {
	sess, err := d.find(sessionID, userID)
	if err != nil {
		return DepositView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Method != MethodPix {
		return DepositView{}, ErrInvalidMethod
	}
	if sess.State != StateExpired {
		return sess.view(), ErrNotExpired
	}

	intent, err := d.gateway.CreatePayment(ctx, CreateRequest{
		AmountCents: sess.AmountCents,
		Method:      MethodPix,
		UserID:      sess.UserID,
		UserEmail:   sess.UserEmail,
		Description: "Wallet deposit",
	})
	if err != nil {
		return sess.view(), err
	}

	charge, err := d.gateway.ConfirmPix(ctx, intent.ID)
	if err != nil {
		return sess.view(), err
	}
	if !charge.Ready() {
		return sess.view(), ErrPixCodeUnavailable
	}

	now := time.Now()
	sess.PaymentID = intent.ID
	sess.ClientSecret = ""
	sess.QRCodeImage = charge.QRCodeImage
	sess.CopyPasteCode = charge.CopyPasteCode
	sess.LastStatus = intent.Status
	sess.State = StateAwaitingPayment
	sess.ExpiresAt = now.Add(d.cfg.TTL)
	sess.credited = false
	sess.finishedAt = time.Time{}

	d.armLocked(sess)

	logger.Info("deposit session regenerated", "session_id", sess.ID, "payment_id", sess.PaymentID)

	return sess.view(), nil
}

// ConfirmCard performs the single synchronous card confirmation. A provider
// error keeps the session in awaiting_card so the user can retry.
func (d *DepositService) ConfirmCard(ctx context.Context, sessionID string, userID int) (DepositView, error) {
	sess, err := d.find(sessionID, userID)
	if err != nil {
		return DepositView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StateAwaitingCard {
		return sess.view(), ErrNotAwaitingCard
	}

	snap, err := d.gateway.ConfirmCard(ctx, sess.PaymentID)
	if err != nil {
		return sess.view(), err
	}

	sess.LastStatus = snap.Status

	switch snap.Status {
	case StatusSucceeded:
		d.settleLocked(sess)
	case StatusCanceled:
		sess.stopExpiryLocked()
		sess.State = StateCanceled
		sess.finishedAt = time.Now()
		metrics.RecordDeposit(string(StateCanceled), string(sess.Method))
	}

	return sess.view(), nil
}

// janitor drops finished sessions after the retention window so the
// in-memory registry does not grow without bound.
func (d *DepositService) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		for id, sess := range d.sessions {
			sess.mu.Lock()
			finished := sess.finishedAt
			state := sess.State
			sess.mu.Unlock()

			terminal := state == StateSucceeded || state == StateCanceled || state == StateExpired
			if terminal && !finished.IsZero() && time.Since(finished) > d.cfg.SessionRetainer {
				delete(d.sessions, id)
				metrics.DepositSessionsActive.Dec()
			}
		}
		d.mu.Unlock()
	}
}

// Close stops the janitor and every live polling session.
func (d *DepositService) Close() {
	d.stopOnce.Do(func() { close(d.stop) })

	d.mu.Lock()
	sessions := make([]*DepositSession, 0, len(d.sessions))
	for _, sess := range d.sessions {
		sessions = append(sessions, sess)
	}
	d.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.stopExpiryLocked()
		cancel := sess.cancelPoll
		sess.cancelPoll = nil
		sess.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
}
