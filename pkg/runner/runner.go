// Package runner is the device command-execution boundary. The core never
// opens connections itself; a Runner implementation owns transport,
// authentication, timeouts and retries.
package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/netops-tools/prepost/pkg/inventory"
)

// Credentials carry the device login a Runner may need.
type Credentials struct {
	Username string
	Password string
}

type Runner interface {
	Run(ctx context.Context, host *inventory.Host, command string) (string, error)
}

// Banner frames one command's output the way saved snapshots expect it.
func Banner(command string) string {
	pad := 79 - len(command)
	if pad < 0 {
		pad = 0
	}
	return "==== " + command + " " + strings.Repeat("=", pad) + "\n"
}

// RunAll executes commands in order and concatenates their framed outputs
// into one snapshot body.
func RunAll(ctx context.Context, r Runner, host *inventory.Host, commands []string) (string, error) {
	var sb strings.Builder
	for _, cmd := range commands {
		out, err := r.Run(ctx, host, cmd)
		if err != nil {
			return "", fmt.Errorf("run %q on %s: %w", cmd, host.Name, err)
		}
		sb.WriteString(Banner(cmd))
		sb.WriteString(out)
		sb.WriteString("\n\n\n")
	}
	return sb.String(), nil
}
