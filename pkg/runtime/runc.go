package runtime

import (
	"context"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/step"
)

// Runc drives an OCI bundle directly via the `runc` CLI. BundleDir must
// already contain a config.json reflecting Mounts/Environ; crossforge's
// bundle preparation (not part of this step package) is responsible for
// writing it before each Run call.
type Runc struct {
	BundleDir string
	Mounts    []Mount
}

func (r *Runc) Run(ctx context.Context, m step.Manifest) (step.ExitStatus, error) {
	cmd := exec.CommandContext(ctx, "runc", "run", "--bundle", r.BundleDir, containerID(m))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	return exitStatusFromCmdErr(err), nil
}

// containerID derives a short, stable container name from the subject
// coordinates so concurrent runs (never actually concurrent per spec §5,
// but useful for log correlation) don't collide.
func containerID(m step.Manifest) string {
	return m.SubjectKind + "-" + m.SubjectName
}
