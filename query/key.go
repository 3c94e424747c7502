package query

import (
	"strings"

	"github.com/jrsteele09/site-admin-console/cache"
)

// Key identifies a query result, e.g. {"pages", "list", "1"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, cache.Separator)
}

// IdentityKey builds a key in the identity scope, which is invalidated
// whenever a different user may have logged in.
func IdentityKey(parts ...string) Key {
	return append(Key{cache.IdentityScope}, parts...)
}
