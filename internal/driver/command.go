package driver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"optdrive/internal/logging"
)

// runCommand executes a configured shell command with the driver timeout,
// feeding stdin when provided and returning captured stdout. The command
// string supports shell pipes and variable expansion; the burden of safety
// is on the configuration author.
func runCommand(ctx context.Context, logger *slog.Logger, shell, label, command string, stdin []byte, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	if len(stdin) > 0 {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	logger.Debug("command finished",
		logging.String("command", label),
		logging.Duration("elapsed", time.Since(started)),
		logging.Bool("failed", err != nil),
	)
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return nil, fmt.Errorf("%s command: %w: %s", label, err, detail)
		}
		return nil, fmt.Errorf("%s command: %w", label, err)
	}
	return stdout.Bytes(), nil
}
