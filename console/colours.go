package console

import "github.com/jrsteele09/site-admin-console/session"

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m"
)

var stateColors = map[session.State]string{
	session.StateUninitialized:   Gray,
	session.StateInitializing:    Yellow,
	session.StateAuthenticated:   Green,
	session.StateUnauthenticated: Red,
}

func (c *Console) paint(color, s string) string {
	if !c.color || color == "" {
		return s
	}
	return color + s + ResetColor
}
