package config

import "time"

type SessionConfig interface {
	GetRefreshInterval() time.Duration
	GetRequestTimeout() time.Duration
}

type Session struct {
	// RefreshInterval must stay comfortably below the server's access token
	// lifetime.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"10m"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
}

var _ SessionConfig = Session{}

func (s Session) GetRefreshInterval() time.Duration {
	return s.RefreshInterval
}

func (s Session) GetRequestTimeout() time.Duration {
	return s.RequestTimeout
}
