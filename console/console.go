// Package console is the interactive shell administrators use to sign in and
// browse site content.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/site-admin-console/apiclient"
	"github.com/jrsteele09/site-admin-console/authmodel"
	"github.com/jrsteele09/site-admin-console/query"
	"github.com/jrsteele09/site-admin-console/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultPrompt = "admin> "

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// Session is the part of the session controller the console drives.
type Session interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, creds authmodel.Credentials) error
	Logout(ctx context.Context) error
}

// ContentAPI is the set of REST calls the data commands use.
type ContentAPI interface {
	Me(ctx context.Context) (*authmodel.Profile, error)
	List(ctx context.Context, kind apiclient.Kind, opts apiclient.ListOptions) (*apiclient.ListResult, error)
	Get(ctx context.Context, kind apiclient.Kind, id string) (apiclient.Item, error)
}

// TokenReader exposes the current access token for the status command.
type TokenReader interface {
	Get() (string, bool)
}

// PasswordReader reads a password without echoing it where possible. It
// should give up when ctx is cancelled.
type PasswordReader func(ctx context.Context) (string, error)

type Console struct {
	session Session
	api     ContentAPI
	gate    *query.Gate
	tokens  TokenReader

	in           *bufio.Scanner
	requests     chan struct{}
	lines        chan inputLine
	readerOnce   sync.Once
	pending      bool
	out          io.Writer
	readPassword PasswordReader
	prompt       string
	color        bool
	logger       zerolog.Logger

	commands map[string]command
}

type inputLine struct {
	text string
	err  error
}

type Option func(*Console)

// WithPasswordReader replaces the default reader, which takes the next input
// line as the password.
func WithPasswordReader(r PasswordReader) Option {
	return func(c *Console) {
		c.readPassword = r
	}
}

func WithColor(enabled bool) Option {
	return func(c *Console) {
		c.color = enabled
	}
}

func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

func New(s Session, api ContentAPI, gate *query.Gate, tokens TokenReader, in io.Reader, out io.Writer, options ...Option) *Console {
	c := &Console{
		session:  s,
		api:      api,
		gate:     gate,
		tokens:   tokens,
		in:       bufio.NewScanner(in),
		requests: make(chan struct{}),
		lines:    make(chan inputLine, 1),
		out:      out,
		prompt:   defaultPrompt,
		logger:   log.Logger,
	}
	c.readPassword = c.readLine
	for _, opt := range options {
		opt(c)
	}
	c.commands = c.registerCommands()
	return c
}

// Run reads and executes commands until the input ends, a quit command is
// given or ctx is cancelled. Command failures are printed and do not stop the
// loop.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, c.prompt)
		line, err := c.readLine(ctx)
		if err == io.EOF {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}

		err = c.Execute(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(c.out, c.paint(Red, "error: "+err.Error()))
		}
	}
}

// Execute runs a single command line.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try \"help\"", name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	if cmd.mutating && !c.session.Snapshot().IsActionable() {
		return fmt.Errorf("%s: session is busy, try again shortly", name)
	}
	c.logger.Debug().Str("command", name).Msg("executing console command")
	return cmd.run(ctx, args)
}

// readLine returns the next input line, or ctx's error as soon as ctx is
// cancelled. Lines are only read on request so that a terminal password
// prompt never competes with the scanner for input.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.readerOnce.Do(func() { go c.scan() })

	if !c.pending {
		select {
		case c.requests <- struct{}{}:
			c.pending = true
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	select {
	case l := <-c.lines:
		c.pending = false
		return l.text, l.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Console) scan() {
	for range c.requests {
		if c.in.Scan() {
			c.lines <- inputLine{text: strings.TrimSpace(c.in.Text())}
			continue
		}
		err := c.in.Err()
		if err == nil {
			err = io.EOF
		}
		c.lines <- inputLine{err: err}
		return
	}
}

func (c *Console) commandNames() []string {
	names := make([]string, 0, len(c.commands))
	for name, cmd := range c.commands {
		if cmd.alias {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
