package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email or username" }
func (c *LoginCmd) Usage() string     { return "taskdeck login [--password <pw>] <email-or-username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: email or username required")
		return exitcode.UserError
	}
	identifier := args[0]

	password := c.password
	if password == "" {
		var err error
		password, err = prompt(in, errOut, "Password: ")
		if err != nil {
			fmt.Fprintln(errOut, "error: failed to read password")
			return exitcode.UserError
		}
	}

	store := session.New(svc)
	if err := store.Login(ctx, identifier, password); err != nil {
		return fail(errOut, err)
	}

	if snap := store.Snapshot(); !cfg.Quiet && snap.User != nil {
		fmt.Fprintf(out, "logged in as %s\n", snap.User.Email)
	}
	return exitcode.Success
}
