package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/jrsteele09/site-admin-console/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the subset of access token claims shown to the operator.
// The values are decoded without verifying the signature: the API server is
// the only party that validates tokens, the console merely displays them.
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the exp claim is in the past. Tokens without an exp
// claim never expire from the console's point of view.
func (c *Claims) Expired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().After(c.ExpiresAt)
}

// ExpiresIn returns the time left until exp, or zero when already expired or
// unknown.
func (c *Claims) ExpiresIn() time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	left := c.ExpiresAt.Sub(NowTimeFunc())
	if left < 0 {
		return 0
	}
	return left
}

// Inspect decodes the claims of a JWT access token. Non-JWT tokens return
// ErrOpaqueToken.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrNoAccessToken
	}
	if strings.Count(rawToken, ".") != 2 {
		return nil, apperrors.ErrOpaqueToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("token.Inspect: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("token.Inspect: unexpected claims type %T", parsed.Claims)
	}

	c := &Claims{}
	c.Subject, _ = claims.GetSubject()
	c.Issuer, _ = claims.GetIssuer()
	c.Email, _ = claims["email"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	c.Roles = utils.ToStringSlice(claims["roles"])
	return c, nil
}
