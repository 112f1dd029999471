package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds a single --version probe.
const versionTimeout = 5 * time.Second

// Requirement names an external program and how to ask it for a version.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	VersionArgs []string
}

// Status is the outcome of checking one Requirement. Path is the resolved
// executable when Available is true.
type Status struct {
	Requirement
	Path      string
	Available bool
	Version   string
	Detail    string
}

// Check resolves one requirement on PATH and probes its version. A failed
// probe leaves the program available and explains itself in Detail.
func Check(ctx context.Context, req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	st := Status{Requirement: req}

	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Path, st.Available = path, true

	if len(req.VersionArgs) == 0 {
		return st
	}
	if v, err := firstOutputLine(ctx, path, req.VersionArgs...); err != nil {
		st.Detail = fmt.Sprintf("version check failed: %v", err)
	} else {
		st.Version = v
	}
	return st
}

// CheckBinaries runs Check for every requirement, preserving order.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		out[i] = Check(ctx, req)
	}
	return out
}

// Missing keeps the unavailable statuses that are not optional.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, st := range statuses {
		if st.Optional || st.Available {
			continue
		}
		out = append(out, st)
	}
	return out
}

func firstOutputLine(ctx context.Context, path string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	raw, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(raw)), "\n")
	return strings.TrimSpace(first), nil
}
