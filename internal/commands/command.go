// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	// Commands like help, version, login, signup return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (state dir, backend settings).
	// svc is the backend client; for NeedsAuth commands the dispatcher has
	// already restored the stored session on it.
	// args contains positional arguments after flag parsing.
	// in is the interactive input used for password prompts and confirmations.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, in io.Reader, out, errOut io.Writer) int
}
