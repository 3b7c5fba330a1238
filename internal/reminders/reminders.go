// Package reminders reads the shopping list snapshot from the reminders CLI.
package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrSourceUnavailable is wrapped by every failure to obtain a snapshot.
var ErrSourceUnavailable = errors.New("reminders: source unavailable")

// Reminder is one list entry as reported by the reminders store.
type Reminder struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
}

// CLI runs `<Command> show --format=json <List>` and decodes its output.
type CLI struct {
	Command string
	List    string
	// Args replaces the default arguments when set.
	Args []string
}

// NewCLI returns a CLI reading the named list.
func NewCLI(command, list string) *CLI {
	return &CLI{Command: command, List: list}
}

func (c *CLI) args() []string {
	if len(c.Args) > 0 {
		return c.Args
	}
	return []string{"show", "--format=json", c.List}
}

// Snapshot returns the full current list. Any failure wraps ErrSourceUnavailable
// and no partial list is returned.
func (c *CLI) Snapshot(ctx context.Context) ([]Reminder, error) {
	output, err := runCommand(ctx, c.Command, c.args()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	items, err := Parse(output)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return items, nil
}

// Parse decodes the CLI's JSON array output.
func Parse(output []byte) ([]Reminder, error) {
	var items []Reminder
	if err := json.Unmarshal(output, &items); err != nil {
		return nil, fmt.Errorf("malformed output: %w", err)
	}
	for i, item := range items {
		if strings.TrimSpace(item.ExternalID) == "" {
			return nil, fmt.Errorf("malformed output: entry %d has no externalId", i)
		}
	}
	if items == nil {
		items = []Reminder{}
	}
	return items, nil
}

// runCommand executes the command and returns stdout. Stderr is folded into the error.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return output, nil
}
