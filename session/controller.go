package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/site-admin-console/authmodel"
	"github.com/jrsteele09/site-admin-console/cache"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the network side of the session: the REST client's auth
// endpoints. Refresh relies on an out-of-band credential (an HTTP-only cookie)
// that the controller never sees.
type AuthAPI interface {
	Login(ctx context.Context, creds authmodel.Credentials) (*authmodel.TokenResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*authmodel.TokenResponse, error)
}

// TokenStore is the write side of token.Store.
type TokenStore interface {
	Set(token string)
	Clear()
}

// Cache is the part of the shared request cache the controller drives.
type Cache interface {
	Invalidate(prefix string)
	DropAll()
}

// Scheduler arms a single deferred refresh.
type Scheduler interface {
	Arm(fn func())
	Cancel()
}

// Controller is the single source of truth for whether the console is
// authenticated and the only writer of the access token.
type Controller struct {
	api       AuthAPI
	tokens    TokenStore
	cache     Cache
	scheduler Scheduler

	logger         zerolog.Logger
	identityScopes []string
	refreshTimeout time.Duration

	// initialised is the one-shot latch for Initialize; it is flipped before
	// any network call is made.
	initialised atomic.Bool
	ready       chan struct{}
	readyOnce   sync.Once

	baseCtx context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	state       State
	// epoch changes on every transition into or out of Authenticated, so a
	// result fetched under one identity can be told apart from the next.
	epoch       uint64
	loading     bool
	started     bool
	closed      bool
	subscribers map[uint64]func(Snapshot)
	nextSubID   uint64
}

func New(api AuthAPI, tokens TokenStore, c Cache, scheduler Scheduler, options ...ControllerOption) *Controller {
	ctrl := &Controller{
		api:            api,
		tokens:         tokens,
		cache:          c,
		scheduler:      scheduler,
		logger:         log.Logger,
		identityScopes: []string{cache.IdentityScope},
		refreshTimeout: defaultRefreshTimeout,
		ready:          make(chan struct{}),
		subscribers:    make(map[uint64]func(Snapshot)),
	}
	for _, opt := range options {
		opt(ctrl)
	}
	if ctrl.refreshTimeout <= 0 {
		ctrl.refreshTimeout = defaultRefreshTimeout
	}
	ctrl.baseCtx, ctrl.cancel = context.WithCancel(context.Background())
	return ctrl
}

// Initialize attempts to recover an existing session with a silent refresh.
// Only the first call does anything; later calls return immediately. Failures
// are the normal "not logged in" outcome and are never returned.
func (c *Controller) Initialize(ctx context.Context) {
	if !c.initialised.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("session initialisation already started")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateInitializing
	c.loading = true
	c.mu.Unlock()
	c.notify()

	ctx, release := c.bind(ctx)
	resp, err := c.api.Refresh(ctx)
	release()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err == nil && resp.HasToken() {
		c.tokens.Set(resp.AccessToken)
		c.transitionLocked(StateAuthenticated)
		c.scheduler.Arm(c.backgroundRefresh)
		c.logger.Info().Msg("session recovered")
	} else {
		c.tokens.Clear()
		c.transitionLocked(StateUnauthenticated)
		c.logger.Debug().Err(err).Msg("no session to recover")
	}
	c.started = true
	c.loading = false
	c.mu.Unlock()

	c.markReady()
	c.notify()
}

// Login exchanges credentials for an access token. On success the identity
// scoped cache entries are invalidated and the refresh timer is armed. On any
// failure the session ends up logged out and the error is returned unchanged
// for the caller to display.
func (c *Controller) Login(ctx context.Context, creds authmodel.Credentials) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	ctx, release := c.bind(ctx)
	resp, err := c.api.Login(ctx, creds)
	release()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrControllerClosed, err)
		}
		return apperrors.ErrControllerClosed
	}
	if err == nil && !resp.HasToken() {
		err = fmt.Errorf("login response: %w", apperrors.ErrNoAccessToken)
	}
	if err != nil {
		c.tokens.Clear()
		c.transitionLocked(StateUnauthenticated)
		c.scheduler.Cancel()
		c.logger.Info().Err(err).Str("email", creds.Email).Msg("login failed")
		return err
	}

	c.tokens.Set(resp.AccessToken)
	c.transitionLocked(StateAuthenticated)
	for _, prefix := range c.identityScopes {
		c.cache.Invalidate(prefix)
	}
	c.scheduler.Arm(c.backgroundRefresh)
	c.logger.Info().Str("email", creds.Email).Msg("logged in")
	return nil
}

// Logout always leaves the session logged out locally. A failed remote call is
// reported as an error wrapping ErrRemoteLogout, to be shown as a warning.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	ctx, release := c.bind(ctx)
	remoteErr := c.api.Logout(ctx)
	release()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens.Clear()
	if c.closed {
		return apperrors.ErrControllerClosed
	}
	c.transitionLocked(StateUnauthenticated)
	c.cache.DropAll()
	c.scheduler.Cancel()

	if remoteErr != nil {
		c.logger.Warn().Err(remoteErr).Msg("remote logout failed, logged out locally")
		return fmt.Errorf("%w: %w", apperrors.ErrRemoteLogout, remoteErr)
	}
	c.logger.Info().Msg("logged out")
	return nil
}

// backgroundRefresh is the scheduler callback. It is skipped while another
// operation holds the session: a login in flight re-arms on success and a
// logout disarms.
func (c *Controller) backgroundRefresh() {
	c.mu.Lock()
	if c.closed || c.loading || c.state != StateAuthenticated {
		c.mu.Unlock()
		c.logger.Debug().Msg("background refresh skipped")
		return
	}
	c.loading = true
	ctx, cancel := context.WithTimeout(c.baseCtx, c.refreshTimeout)
	c.mu.Unlock()
	c.notify()

	defer c.finish()
	resp, err := c.api.Refresh(ctx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err == nil && !resp.HasToken() {
		err = fmt.Errorf("refresh response: %w", apperrors.ErrNoAccessToken)
	}
	if err != nil {
		c.tokens.Clear()
		c.transitionLocked(StateUnauthenticated)
		c.scheduler.Cancel()
		c.cache.DropAll()
		c.logger.Info().Err(err).Msg("session expired, login required")
		return
	}

	c.tokens.Set(resp.AccessToken)
	c.scheduler.Arm(c.backgroundRefresh)
	c.logger.Debug().Msg("access token refreshed")
}

// Close tears the controller down: the refresh timer is cancelled, in-flight
// requests are cancelled, and anything that completes afterwards is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.scheduler.Cancel()
	c.cancel()
	c.subscribers = make(map[uint64]func(Snapshot))
	c.mu.Unlock()

	c.markReady()
	c.logger.Debug().Msg("session controller closed")
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsLoggedIn is the narrow view used by query gates.
func (c *Controller) IsLoggedIn() bool {
	return c.Snapshot().IsLoggedIn
}

// Epoch identifies the current login. It changes whenever the session enters
// or leaves Authenticated.
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// InEpoch runs fn only if the session is logged in and still at epoch. fn runs
// under the controller lock, so no login or logout can interleave with it.
func (c *Controller) InEpoch(epoch uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateAuthenticated || c.epoch != epoch {
		return false
	}
	fn()
	return true
}

// Ready is closed once initialization has completed or the controller is
// closed.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Subscribe registers fn to receive the latest snapshot after every change.
// fn runs on the goroutine that made the change and must not block. The
// returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Controller) begin() error {
	c.mu.Lock()
	var err error
	switch {
	case c.closed:
		err = apperrors.ErrControllerClosed
	case !c.started:
		err = apperrors.ErrNotStarted
	case c.loading:
		err = apperrors.ErrOperationInProgress
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.loading = true
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	c.notify()
}

// bind derives a context from ctx that is also cancelled by Close.
func (c *Controller) bind(ctx context.Context) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.baseCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Controller) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// transitionLocked moves to next. Entering Authenticated always starts a new
// epoch, including a re-login while already authenticated.
func (c *Controller) transitionLocked(next State) {
	if c.state == StateAuthenticated || next == StateAuthenticated {
		c.epoch++
	}
	c.state = next
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		IsLoggedIn: c.state == StateAuthenticated,
		IsLoading:  c.loading,
		IsStarted:  c.started,
	}
}
