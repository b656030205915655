package runtime

import (
	"context"

	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Cbuildrt targets the managarm cbuildrt sandbox. Selecting it does not
// turn on sysroot isolation: nothing in pkg/plan sets Key.TargetSysrootID,
// so every package step uses the shared sysroot. Not implemented: cbuildrt is a
// managarm-specific daemon with its own wire protocol this module has no
// grounded reference implementation for, so this stub documents the
// integration point rather than guessing at a protocol.
type Cbuildrt struct {
	SocketPath string
}

func (c *Cbuildrt) Run(ctx context.Context, m step.Manifest) (step.ExitStatus, error) {
	return step.ExitStatus{}, xerrors.NewConfigError("cbuildrt runtime is not implemented in this build")
}
