// Package mock is a scripted runner for tests and dry runs.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/netops-tools/prepost/pkg/inventory"
)

type Runner struct {
	mu sync.Mutex
	// Responses maps host name to command to canned output.
	Responses map[string]map[string]string
	// Err, when set, fails every Run call.
	Err error
	// Calls records (host, command) pairs in execution order.
	Calls [][2]string
}

func New() *Runner {
	return &Runner{Responses: make(map[string]map[string]string)}
}

// Script sets the canned output for one host/command pair.
func (r *Runner) Script(host, command, output string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Responses[host] == nil {
		r.Responses[host] = make(map[string]string)
	}
	r.Responses[host][command] = output
}

func (r *Runner) Run(ctx context.Context, host *inventory.Host, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, [2]string{host.Name, command})
	if r.Err != nil {
		return "", r.Err
	}
	if out, ok := r.Responses[host.Name][command]; ok {
		return out, nil
	}
	return fmt.Sprintf("%s output for %s", command, host.Name), nil
}
