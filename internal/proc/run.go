package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single external command when the caller gives none.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when a command runs past its deadline.
var ErrTimeout = errors.New("command timed out")

// Command describes one external process invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Run executes the command and returns its stdout and trimmed stderr.
func Run(ctx context.Context, c Command) ([]byte, string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrText := strings.TrimSpace(stderr.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, stderrText, fmt.Errorf("%s: %w after %s", c.Name, ErrTimeout, timeout)
		}
		return nil, stderrText, err
	}

	return stdout.Bytes(), strings.TrimSpace(stderr.String()), nil
}

// CommandError folds stderr output into err when there is any.
func CommandError(name string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	if stderr != "" {
		return fmt.Errorf("%s failed: %s", name, stderr)
	}
	return fmt.Errorf("%s failed: %w", name, err)
}

// Lines splits command output into non-empty trimmed lines.
func Lines(output []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
