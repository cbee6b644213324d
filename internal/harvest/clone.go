package harvest

import (
	"context"
	"fmt"
	"os/exec"
)

// GitCloner shells out to the system git binary. No third-party example
// in this corpus wires a Go git client, and the harvester's clone need is
// a single shallow checkout -- not worth vendoring a full git
// implementation for; see DESIGN.md.
type GitCloner struct{}

// Clone performs a shallow, single-branch clone of url at ref into destDir.
func (GitCloner) Clone(ctx context.Context, url, ref, destDir string) error {
	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, destDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("harvest: git clone %s: %w: %s", url, err, out)
	}
	return nil
}
