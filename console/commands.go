package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/site-admin-console/apiclient"
	"github.com/jrsteele09/site-admin-console/authmodel"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/jrsteele09/site-admin-console/query"
	"github.com/jrsteele09/site-admin-console/token"
	"gopkg.in/yaml.v3"
)

// contentScope prefixes every cached content query.
const contentScope = "content"

type command struct {
	usage   string
	help    string
	minArgs int
	// maxArgs < 0 means unbounded.
	maxArgs int
	// mutating commands change the session and are refused while it is busy.
	mutating bool
	alias    bool
	run      func(ctx context.Context, args []string) error
}

func (c *Console) registerCommands() map[string]command {
	quit := command{usage: "quit", help: "leave the console", run: c.quit}
	exit := quit
	exit.alias = true

	return map[string]command{
		"help":   {usage: "help", help: "show this help", run: c.help},
		"status": {usage: "status", help: "show the session state and token details", run: c.status},
		"login": {
			usage: "login <email>", help: "sign in, the password is prompted",
			minArgs: 1, maxArgs: 1, mutating: true, run: c.login,
		},
		"logout": {usage: "logout", help: "sign out and forget cached data", mutating: true, run: c.logout},
		"whoami": {usage: "whoami", help: "show the signed in administrator", run: c.whoami},
		"kinds":  {usage: "kinds", help: "list the content kinds", run: c.kinds},
		"list": {
			usage: "list <kind> [page]", help: "list one page of content",
			minArgs: 1, maxArgs: 2, run: c.list,
		},
		"get": {
			usage: "get <kind> <id>", help: "show a single content item",
			minArgs: 2, maxArgs: 2, run: c.get,
		},
		"quit": quit,
		"exit": exit,
	}
}

func (c *Console) help(_ context.Context, _ []string) error {
	table := uitable.New()
	table.AddRow("COMMAND", "DESCRIPTION")
	for _, name := range c.commandNames() {
		cmd := c.commands[name]
		table.AddRow(cmd.usage, cmd.help)
	}
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) status(_ context.Context, _ []string) error {
	snap := c.session.Snapshot()

	table := uitable.New()
	table.AddRow("STATE:", c.paint(stateColors[snap.State], snap.State.String()))
	table.AddRow("LOGGED IN:", snap.IsLoggedIn)
	table.AddRow("BUSY:", snap.IsLoading)
	table.AddRow("STARTED:", snap.IsStarted)

	raw, ok := c.tokens.Get()
	claims, err := token.Inspect(raw)
	switch {
	case !ok:
		table.AddRow("TOKEN:", c.paint(Gray, "none"))
	case errors.Is(err, apperrors.ErrOpaqueToken):
		table.AddRow("TOKEN:", "opaque")
	case err != nil:
		table.AddRow("TOKEN:", c.paint(Red, err.Error()))
	default:
		table.AddRow("SUBJECT:", claims.Subject)
		table.AddRow("EMAIL:", claims.Email)
		if len(claims.Roles) > 0 {
			table.AddRow("ROLES:", strings.Join(claims.Roles, ", "))
		}
		switch {
		case claims.ExpiresAt.IsZero():
			table.AddRow("EXPIRES:", "never")
		case claims.Expired():
			table.AddRow("EXPIRES:", c.paint(Red, "expired"))
		default:
			table.AddRow("EXPIRES:", c.paint(Cyan, "in "+claims.ExpiresIn().Round(time.Second).String()))
		}
	}
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	fmt.Fprint(c.out, "Password: ")
	password, err := c.readPassword(ctx)
	fmt.Fprintln(c.out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	creds := authmodel.Credentials{Email: args[0], Password: password}
	if err := c.session.Login(ctx, creds); err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.paint(Green, "Logged in as "+creds.Email))
	return nil
}

func (c *Console) logout(ctx context.Context, _ []string) error {
	err := c.session.Logout(ctx)
	if errors.Is(err, apperrors.ErrRemoteLogout) {
		// The local session is gone either way.
		fmt.Fprintln(c.out, c.paint(Yellow, "warning: "+err.Error()))
	} else if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *Console) whoami(ctx context.Context, _ []string) error {
	profile, err := query.Fetch(ctx, c.gate, query.Query[*authmodel.Profile]{
		Key:   query.IdentityKey("me"),
		Fetch: c.api.Me,
	})
	if err != nil {
		return describeFetchError(err)
	}

	table := uitable.New()
	table.AddRow("ID", "EMAIL", "NAME", "ROLES")
	table.AddRow(profile.ID, profile.Email, profile.Name, strings.Join(profile.Roles, ", "))
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) kinds(_ context.Context, _ []string) error {
	for _, k := range apiclient.Kinds {
		fmt.Fprintln(c.out, k)
	}
	return nil
}

func (c *Console) list(ctx context.Context, args []string) error {
	kind, err := apiclient.ParseKind(args[0])
	if err != nil {
		return err
	}
	page := 1
	if len(args) > 1 {
		if page, err = strconv.Atoi(args[1]); err != nil || page < 1 {
			return fmt.Errorf("invalid page %q", args[1])
		}
	}

	result, err := query.Fetch(ctx, c.gate, query.Query[*apiclient.ListResult]{
		Key: query.Key{contentScope, string(kind), "page", strconv.Itoa(page)},
		Fetch: func(ctx context.Context) (*apiclient.ListResult, error) {
			return c.api.List(ctx, kind, apiclient.ListOptions{Page: page})
		},
	})
	if err != nil {
		return describeFetchError(err)
	}

	if len(result.Items) == 0 {
		fmt.Fprintf(c.out, "No %s found.\n", kind)
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID", "TITLE")
	for _, item := range result.Items {
		table.AddRow(item.ID(), item.Title())
	}
	fmt.Fprintln(c.out, table)
	fmt.Fprintf(c.out, "Page %d of %d (%d total)\n", result.Page, result.Pages(), result.Total)
	return nil
}

func (c *Console) get(ctx context.Context, args []string) error {
	kind, err := apiclient.ParseKind(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	item, err := query.Fetch(ctx, c.gate, query.Query[apiclient.Item]{
		Key: query.Key{contentScope, string(kind), id},
		Fetch: func(ctx context.Context) (apiclient.Item, error) {
			return c.api.Get(ctx, kind, id)
		},
		Enabled: func() bool { return strings.TrimSpace(id) != "" },
	})
	if err != nil {
		return describeFetchError(err)
	}

	out, err := yaml.Marshal(map[string]any(item))
	if err != nil {
		return fmt.Errorf("formatting %s %s: %w", kind, id, err)
	}
	fmt.Fprint(c.out, string(out))
	return nil
}

func (c *Console) quit(_ context.Context, _ []string) error {
	return errQuit
}

// describeFetchError turns a disabled query into a hint for the operator.
func describeFetchError(err error) error {
	if errors.Is(err, apperrors.ErrQueryDisabled) {
		return fmt.Errorf("not logged in, use \"login <email>\" first: %w", err)
	}
	return err
}
