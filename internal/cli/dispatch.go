// Package cli parses arguments and dispatches to commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

// BackendFactory creates a Backend from config.
// Used to inject the backend during dispatch.
type BackendFactory func(ctx context.Context, cfg *config.Config) (service.Backend, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BackendFactory
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory BackendFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// Flags require a command first
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], in, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var stateDir string
	var quiet bool
	var debug bool

	fs.StringVar(&stateDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
			parts := strings.Split(errStr, ":")
			flagPart := strings.TrimPrefix(strings.TrimSpace(parts[0]), "flag ")
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
			return exitcode.UserError
		}

		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
			return exitcode.UserError
		}

		fmt.Fprintf(errOut, "error: %s\n", errStr)
		return exitcode.UserError
	}

	// A leading - in positionals means a flag came after positional args
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	var opts []config.InitOption
	if stateDir != "" {
		opts = append(opts, config.WithStateDir(stateDir))
	}
	cfg, err := config.New(opts...)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	svc, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	if cmd.NeedsAuth() {
		if _, err := svc.RestoreSession(ctx); err != nil {
			fmt.Fprintf(errOut, "error: not logged in (run: taskdeck login)\n")
			return exitcode.AuthError
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, in, out, errOut)
}
