package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a 1-based task number from args. Numbers refer to the
// positions printed by the list command, newest task first.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// resolveTask loads the task collection and resolves a reference from args
// against it. The loaded controller is returned for the follow-up mutation.
func resolveTask(ctx context.Context, svc service.Tasks, args []string) (*tasks.Controller, service.Task, error) {
	num, err := ParseTaskRef(args)
	if err != nil {
		return nil, service.Task{}, fmt.Errorf("%w: %v", service.ErrValidation, err)
	}

	ctrl := tasks.New(svc)
	if err := ctrl.LoadAll(ctx); err != nil {
		return nil, service.Task{}, err
	}

	items := ctrl.Snapshot()
	if num > len(items) {
		return nil, service.Task{}, fmt.Errorf("%w: no task %d", service.ErrNotFound, num)
	}
	return ctrl, items[num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
