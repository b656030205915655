package action

import (
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// wrapFailure lifts a lower-level error (a VCS failure, a step failure, an
// I/O error) into an ExecutionFailure naming the action and subject it
// occurred under, unless err is already nil.
func wrapFailure(action plan.Action, id graph.SubjectID, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*xerrors.ExecutionFailure); ok {
		return err
	}
	return &xerrors.ExecutionFailure{
		Action:      string(action),
		SubjectKind: string(id.Kind),
		SubjectName: id.Name,
		Cause:       err,
	}
}
