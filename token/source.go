package token

import (
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"golang.org/x/oauth2"
)

const tokenTypeBearer = "Bearer"

type storeSource struct {
	store *Store
}

// TokenSource exposes the store to an oauth2.Transport so every authenticated
// request carries "Authorization: Bearer <token>". With no token held the
// source fails with ErrNoAccessToken and the request is never sent.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeSource{store: s}
}

func (ss storeSource) Token() (*oauth2.Token, error) {
	raw, ok := ss.store.Get()
	if !ok {
		return nil, apperrors.ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken: raw,
		TokenType:   tokenTypeBearer,
	}, nil
}
