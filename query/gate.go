package query

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthState is the narrow, read-only view of the session a gate needs.
type AuthState interface {
	IsLoggedIn() bool
	// Epoch identifies the current login; it changes on every login and
	// logout.
	Epoch() uint64
	// InEpoch runs fn only while the session is logged in at epoch, with no
	// session transition able to interleave.
	InEpoch(epoch uint64, fn func()) bool
}

// Store is where fetched results are kept between calls.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Predicate is an additional, caller supplied condition for a query to run.
type Predicate func() bool

// And combines predicates; a nil predicate counts as true. And(a, And(b, c))
// behaves exactly like And(And(a, b), c).
func And(predicates ...Predicate) Predicate {
	return func() bool {
		for _, p := range predicates {
			if p != nil && !p() {
				return false
			}
		}
		return true
	}
}

// Query describes one authenticated fetch.
type Query[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
	// Enabled further restricts when the query may run, e.g. "an id was
	// given". Nil means always.
	Enabled Predicate
}

// Gate keeps authenticated fetches from starting while the session is logged
// out. Every data-fetching call site goes through a Gate.
type Gate struct {
	auth   AuthState
	store  Store
	logger zerolog.Logger
}

type GateOption func(*Gate)

func WithLogger(logger zerolog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate builds a gate over auth. store may be nil, in which case results are
// never cached.
func NewGate(auth AuthState, store Store, options ...GateOption) *Gate {
	g := &Gate{
		auth:   auth,
		store:  store,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Enabled reports whether a query guarded by p may start now. The session
// predicate is always applied; p can only narrow it.
func (g *Gate) Enabled(p Predicate) bool {
	return And(g.auth.IsLoggedIn, p)()
}

// Fetch runs q if it is enabled, serving it from the store when a previous
// result is cached. A disabled query returns ErrQueryDisabled without calling
// q.Fetch. A result that arrives after the session logged out, or after a
// different login, is returned to the caller but not cached.
func Fetch[T any](ctx context.Context, g *Gate, q Query[T]) (T, error) {
	var zero T
	key := q.Key.String()

	if !g.Enabled(q.Enabled) {
		g.logger.Debug().Str("key", key).Msg("query disabled")
		return zero, fmt.Errorf("%s: %w", key, apperrors.ErrQueryDisabled)
	}

	if g.store != nil && key != "" {
		if cached, ok := g.store.Get(key); ok {
			if v, ok := cached.(T); ok {
				g.logger.Debug().Str("key", key).Msg("query served from cache")
				return v, nil
			}
		}
	}

	epoch := g.auth.Epoch()
	v, err := q.Fetch(ctx)
	if err != nil {
		return zero, err
	}

	if g.store != nil && key != "" {
		stored := g.auth.InEpoch(epoch, func() { g.store.Set(key, v) })
		if !stored {
			g.logger.Debug().Str("key", key).Msg("session changed during query, result not cached")
		}
	}
	return v, nil
}
