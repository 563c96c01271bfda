package mock

import "github.com/netops-tools/prepost/pkg/runner"

func init() {
	runner.Register("mock", func(creds runner.Credentials) (runner.Runner, error) {
		return New(), nil
	})
}
