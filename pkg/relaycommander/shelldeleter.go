package relaycommander

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ShellDeleter is the default Deleter: it spawns the external relay binary
// through a shell, `./strfry delete --filter='<JSON>' [--dry-run]`, and
// reports failure on non-zero exit. stdout/stderr are inherited so the
// relay's own output reaches the operator unfiltered; exit status is the
// sole success signal (§5 Resource policy).
type ShellDeleter struct {
	// BinaryPath is the path to the strfry binary, default "./strfry".
	BinaryPath string
}

// NewShellDeleter builds a ShellDeleter with the default binary path.
func NewShellDeleter() *ShellDeleter {
	return &ShellDeleter{BinaryPath: "./strfry"}
}

// DeleteFromFilter runs `<BinaryPath> delete --filter='<filterJSON>'`,
// appending --dry-run when requested.
func (d *ShellDeleter) DeleteFromFilter(ctx context.Context, filterJSON []byte, dryRun bool) error {
	binary := d.BinaryPath
	if binary == "" {
		binary = "./strfry"
	}

	shellCmd := fmt.Sprintf("%s delete --filter='%s'", binary, filterJSON)
	if dryRun {
		shellCmd += " --dry-run"
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", shellCmd)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("strfry delete failed: %w", err)
	}
	return nil
}
