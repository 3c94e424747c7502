package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/site-admin-console/apiclient"
	"github.com/jrsteele09/site-admin-console/cache"
	"github.com/jrsteele09/site-admin-console/console"
	"github.com/jrsteele09/site-admin-console/internal/config"
	"github.com/jrsteele09/site-admin-console/query"
	"github.com/jrsteele09/site-admin-console/refresh"
	"github.com/jrsteele09/site-admin-console/session"
	"github.com/jrsteele09/site-admin-console/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var overrides config.Overrides
	cmd := &cobra.Command{
		Use:   "site-admin",
		Short: "Site admin console - sign in and browse site content",
		Long: `site-admin is an interactive console for site administrators. It restores
an existing session from the refresh cookie, keeps the access token fresh in the
background and lets you browse pages, sliders, partners and other content.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), overrides)
		},
	}
	cmd.Flags().StringVar(&overrides.APIBaseURL, "api-url", "", "content API base URL (overrides "+config.EnvPrefix+"_API_BASE_URL)")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides "+config.EnvPrefix+"_LOG_LEVEL)")
	return cmd
}

func run(parent context.Context, overrides config.Overrides) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New(overrides)
	if err != nil {
		return err
	}
	if err := setupLogger(c.GetLogLevel()); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := token.NewStore()
	client, err := apiclient.New(c.GetAPIBaseURL(), tokens,
		apiclient.WithTimeout(c.GetRequestTimeout()),
		apiclient.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	store := cache.New(c.GetCacheSize(), c.GetCacheTTL())
	scheduler := refresh.New(c.GetRefreshInterval())
	ctrl := session.New(client, tokens, store, scheduler,
		session.WithRefreshTimeout(c.GetRequestTimeout()),
	)
	defer ctrl.Close()
	gate := query.NewGate(ctrl, store)

	log.Info().Str("env", c.GetEnv()).Str("api", client.BaseURL()).Msg("Restoring session")
	go ctrl.Initialize(ctx)
	select {
	case <-ctrl.Ready():
	case <-ctx.Done():
		return nil
	}
	if ctrl.IsLoggedIn() {
		fmt.Println("Session restored. Type \"help\" for commands.")
	} else {
		fmt.Println("Not logged in. Use \"login <email>\" or \"help\".")
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	options := []console.Option{console.WithColor(interactive)}
	if interactive {
		options = append(options, console.WithPasswordReader(readPassword))
	}

	err = console.New(ctrl, client, gate, tokens, os.Stdin, os.Stdout, options...).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func setupLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return nil
}

// readPassword reads from the terminal without echo. When ctx is cancelled the
// terminal is put back into its original mode and the read is abandoned.
func readPassword(ctx context.Context) (string, error) {
	fd := int(os.Stdin.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return "", err
	}

	type result struct {
		password []byte
		err      error
	}
	done := make(chan result, 1)
	go func() {
		b, err := term.ReadPassword(fd)
		done <- result{b, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return string(r.password), nil
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		return "", ctx.Err()
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
