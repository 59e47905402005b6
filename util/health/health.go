// Package health aggregates dependency checks into the JSON body served on /health.
package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Check probes one dependency. checkLiveness asks only whether the process is alive,
// readiness checks also probe the dependency.
type Check struct {
	Name  string
	Check func(ctx context.Context, checkLiveness bool) (int, string, error)
}

// CheckAll runs every check and reports 503 when any of them is unhealthy.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	var (
		overallStatus = http.StatusOK
		messages      = make([]string, 0, len(checks))
	)

	for _, check := range checks {
		status, message, err := check.Check(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		messages = append(messages, fmt.Sprintf(`{"resource": %q, "status": "%d", "error": %q, "message": %q}`, check.Name, status, errString(err), message))
	}

	return overallStatus, fmt.Sprintf(`{"status":"%d", "dependencies":[%s]}`, overallStatus, strings.Join(messages, ",")), nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
