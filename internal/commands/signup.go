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
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	password string
	username string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string {
	return "taskdeck signup [--username <name>] [--password <pw>] <email>"
}
func (c *SignupCmd) NeedsAuth() bool { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	email := args[0]

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
	result, err := store.Signup(ctx, email, password, c.username)
	if err != nil {
		return fail(errOut, err)
	}

	if result.PendingVerification {
		fmt.Fprintln(out, "account created, check your email to confirm it before logging in")
		return exitcode.Success
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "account created, logged in as %s\n", result.User.Email)
	}
	return exitcode.Success
}
