// Package runtime provides the ContainerRuntime implementations the step
// executor dispatches to: dummy (direct subprocess), docker, runc, and a
// documented cbuildrt stub.
package runtime

import (
	"context"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/step"
)

// Mount describes one bind mount a container runtime must set up before
// running the manifest's command.
type Mount struct {
	Source      string
	Destination string
	ReadOnly    bool
}

// Config is the subset of site configuration every runtime needs: where
// the source/build roots and sysroot land inside the sandbox.
type Config struct {
	SourceRootDest string
	BuildRootDest  string
	SysrootDest    string
	ExecutorPath   string // path to this binary, for dummy's re-invocation
}

// exitStatusFromCmdErr converts an os/exec error into a step.ExitStatus,
// distinguishing a normal nonzero exit from death-by-signal.
func exitStatusFromCmdErr(err error) step.ExitStatus {
	if err == nil {
		return step.ExitStatus{Code: 0}
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		if exitErr.ProcessState != nil {
			if ws, ok := exitErr.Sys().(interface{ Signaled() bool }); ok && ws.Signaled() {
				return step.ExitStatus{Signal: exitErr.Error()}
			}
		}
		return step.ExitStatus{Code: exitErr.ExitCode()}
	}
	return step.ExitStatus{Code: -1}
}

func asExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

// argv builds the command line for a manifest: the shell-string form is
// wrapped as `sh -c <string>`, matching spec §4.5 step 2.
func argv(m step.Manifest) []string {
	if m.ShellString != "" {
		return []string{"sh", "-c", m.ShellString}
	}
	return m.Args
}

// RunDirect executes a manifest's command directly on the host, with no
// container or virtualization layer. This is what a Dummy-reinvoked
// executor process does once it has decoded the manifest from stdin: it
// does not recurse back through a ContainerRuntime, it just runs the
// command.
func RunDirect(ctx context.Context, m step.Manifest) (step.ExitStatus, error) {
	args := argv(m)
	if len(args) == 0 {
		return step.ExitStatus{}, nil
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = mergeEnv(os.Environ(), m.Environ)
	if m.Workdir != "" {
		cmd.Dir = m.Workdir
	}
	err := cmd.Run()
	return exitStatusFromCmdErr(err), nil
}
