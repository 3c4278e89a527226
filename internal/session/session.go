package session

import (
	"context"
	"sync"
	"time"

	"github.com/blossomshop/payments/internal/model"
	"go.uber.org/zap"
)

// State is the client-side view of a payment attempt. It tracks the phone
// prompt lifecycle as observed from polling, which is looser than the stored
// payment status: a session can time out while the record is still pending.
type State string

const (
	StateInitiating State = "initiating"
	StateWaiting    State = "waiting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimeout    State = "timeout"
	StateError      State = "error"
)

func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimeout, StateError:
		return true
	}
	return false
}

// Snapshot is one observable moment of a session, pushed on every countdown
// tick and every state change.
type Snapshot struct {
	State     State
	Remaining int
	Receipt   string
	Message   string
}

// PaymentStatus is the subset of the stored record the session cares about.
type PaymentStatus struct {
	Status        model.PaymentStatus
	ReceiptNumber string
	ResultDesc    string
}

// StatusFetcher reads the current payment record, typically over HTTP.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, paymentID string) (PaymentStatus, error)
}

// Initiator triggers the push prompt for a payment.
type Initiator interface {
	Initiate(ctx context.Context, paymentID string) error
}

type Config struct {
	PollInterval time.Duration
	MaxWait      time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 60 * time.Second
	}
	return c
}

// Controller drives one payment attempt: initiate, then poll the record and
// count down in parallel until a terminal state wins. Both timers share one
// teardown so neither can fire after the session settles.
type Controller struct {
	logger    *zap.Logger
	fetcher   StatusFetcher
	initiator Initiator
	cfg       Config

	mu        sync.Mutex
	paymentID string
	state     State
	remaining int
	receipt   string
	message   string
	stopCh    chan struct{}
	running   bool

	updates chan Snapshot
}

func NewController(logger *zap.Logger, fetcher StatusFetcher, initiator Initiator, cfg Config) *Controller {
	return &Controller{
		logger:    logger,
		fetcher:   fetcher,
		initiator: initiator,
		cfg:       cfg.withDefaults(),
		state:     StateInitiating,
		updates:   make(chan Snapshot, 16),
	}
}

// Updates streams snapshots. Slow consumers lose intermediate ticks, never
// the terminal snapshot: when the buffer is full a terminal publish evicts
// the oldest queued tick to make room.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Start initiates the payment and begins the waiting loop. It returns once
// the prompt has been submitted (or refused); the session then progresses in
// the background until Stop or a terminal state.
func (c *Controller) Start(ctx context.Context, paymentID string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.paymentID = paymentID
	c.state = StateInitiating
	c.mu.Unlock()
	c.publish()

	return c.initiate(ctx)
}

// Retry re-arms a settled session. The stored record is consulted first: a
// prompt the user already approved must never be sent twice, so a record
// that went terminal while the session was down short-circuits straight to
// its outcome without touching the gateway.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.running || !c.state.Terminal() {
		c.mu.Unlock()
		return nil
	}
	paymentID := c.paymentID
	c.state = StateInitiating
	c.receipt = ""
	c.message = ""
	c.mu.Unlock()
	c.publish()

	status, err := c.fetcher.FetchStatus(ctx, paymentID)
	if err != nil {
		c.logger.Warn("Status re-check before retry failed, re-initiating",
			zap.String("paymentID", paymentID),
			zap.Error(err))
		return c.initiate(ctx)
	}

	switch status.Status {
	case model.PaymentStatusCompleted:
		c.settle(StateCompleted, status.ReceiptNumber, status.ResultDesc)
		return nil
	case model.PaymentStatusFailed, model.PaymentStatusCancelled:
		c.settle(StateFailed, "", status.ResultDesc)
		return nil
	}

	return c.initiate(ctx)
}

// Stop tears the session down without marking the payment one way or the
// other. Safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) initiate(ctx context.Context) error {
	c.mu.Lock()
	paymentID := c.paymentID
	c.mu.Unlock()

	if err := c.initiator.Initiate(ctx, paymentID); err != nil {
		c.logger.Error("Failed to initiate payment",
			zap.String("paymentID", paymentID),
			zap.Error(err))
		c.settle(StateError, "", err.Error())
		return err
	}

	c.mu.Lock()
	c.state = StateWaiting
	c.remaining = int(c.cfg.MaxWait / time.Second)
	c.stopCh = make(chan struct{})
	c.running = true
	stopCh := c.stopCh
	c.mu.Unlock()
	c.publish()

	go c.wait(ctx, paymentID, stopCh)

	return nil
}

// wait runs the two session clocks. The poll ticker asks the record whether
// the payment settled; the countdown ticker burns the waiting budget one
// second at a time. Whichever reaches a terminal answer first stops both.
func (c *Controller) wait(ctx context.Context, paymentID string, stopCh chan struct{}) {
	poll := time.NewTicker(c.cfg.PollInterval)
	defer poll.Stop()
	countdown := time.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-countdown.C:
			if c.tick() {
				return
			}
		case <-poll.C:
			if c.poll(ctx, paymentID) {
				return
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			// Cancellation unwinds the session; it is not an outcome of
			// the payment, so the state stays wherever it was.
			c.Stop()
			return
		}
	}
}

func (c *Controller) tick() (done bool) {
	c.mu.Lock()
	c.remaining--
	expired := c.remaining <= 0
	c.mu.Unlock()

	if expired {
		c.settle(StateTimeout, "", "no confirmation received in time")
		return true
	}

	c.publish()
	return false
}

func (c *Controller) poll(ctx context.Context, paymentID string) (done bool) {
	status, err := c.fetcher.FetchStatus(ctx, paymentID)
	if err != nil {
		c.logger.Warn("Status poll failed",
			zap.String("paymentID", paymentID),
			zap.Error(err))
		return false
	}

	switch status.Status {
	case model.PaymentStatusCompleted:
		c.settle(StateCompleted, status.ReceiptNumber, status.ResultDesc)
		return true
	case model.PaymentStatusFailed, model.PaymentStatusCancelled:
		c.settle(StateFailed, "", status.ResultDesc)
		return true
	}

	return false
}

func (c *Controller) settle(state State, receipt, message string) {
	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	c.state = state
	c.receipt = receipt
	c.message = message
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) stopLocked() {
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	for {
		select {
		case c.updates <- snapshot:
			return
		default:
		}

		if !snapshot.State.Terminal() {
			return
		}

		// A terminal snapshot must land even when the consumer stalled
		// through a full budget of ticks; shed the oldest queued one.
		select {
		case <-c.updates:
		default:
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:     c.state,
		Remaining: c.remaining,
		Receipt:   c.receipt,
		Message:   c.message,
	}
}
