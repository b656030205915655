package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/step"
)

// Dummy runs a manifest directly on the host by reinvoking the executor
// binary with the serialized manifest (spec §9: "dummy reinvokes the
// executor binary with the serialized manifest"). It never containerizes
// anything; containerless steps and local development use it.
type Dummy struct {
	ExecutorPath string // defaults to os.Args[0]
	SelfRunArg   string // the subcommand that makes the executor read and run a manifest from stdin, e.g. "--run-manifest"
}

func (d *Dummy) Run(ctx context.Context, m step.Manifest) (step.ExitStatus, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return step.ExitStatus{}, err
	}

	exePath := d.ExecutorPath
	if exePath == "" {
		exePath = os.Args[0]
	}
	runArg := d.SelfRunArg
	if runArg == "" {
		runArg = "--run-manifest"
	}

	cmd := exec.CommandContext(ctx, exePath, runArg)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = mergeEnv(os.Environ(), m.Environ)
	if m.Workdir != "" {
		cmd.Dir = m.Workdir
	}

	err = cmd.Run()
	return exitStatusFromCmdErr(err), nil
}

func mergeEnv(base []string, overlay map[string]string) []string {
	out := append([]string(nil), base...)
	for k, v := range overlay {
		out = append(out, k+"="+v)
	}
	return out
}
