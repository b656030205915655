//go:build !integration

package action

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

func newDriverTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	manifest := `
general:
  everything_by_default: true

sources:
  - name: zlib
    git: "https://example.invalid/zlib.git"
    branch: main

tools:
  - name: gcc
    from_source: zlib
    compile: []
    install: []
  - name: clang
    from_source: zlib
    compile: []
    install: []

packages:
  - name: libfoo
    from_source: zlib
    configure: []
    build: []
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bootstrap.yml"), []byte(manifest), 0o644))
	cfg, err := config.Load(config.LoadOptions{StartDir: dir, BuildRoot: dir})
	require.NoError(t, err)
	return cfg
}

// toolKey builds a CONFIGURE_TOOL key: dispatchable against a bare
// Runner{Config: cfg} with no Executor, since the fixture tools have no
// configure steps, and fails deterministically for a name absent from the
// manifest.
func toolKey(name string) plan.Key {
	return plan.Key{Action: plan.ConfigureTool, Subject: graph.SubjectID{Kind: graph.KindTool, Name: name}}
}

// TestRunPlanKeepGoingSkipsDependentsOfFailedPrereqs exercises testable
// invariant 9: with keep_going, a failed item's dependents are marked
// PREREQS_FAILED and skipped rather than run, while independent items
// still execute.
func TestRunPlanKeepGoingSkipsDependentsOfFailedPrereqs(t *testing.T) {
	cfg := newDriverTestConfig(t)
	r := &Runner{Config: cfg}

	missing := &plan.Item{Key: toolKey("missing"), Active: true}
	dependent := &plan.Item{Key: toolKey("gcc"), Active: true, BuildEdges: []plan.Key{missing.Key}}
	independent := &plan.Item{Key: toolKey("clang"), Active: true}

	p := &plan.Plan{
		Items: map[plan.Key]*plan.Item{missing.Key: missing, dependent.Key: dependent, independent.Key: independent},
		Order: []*plan.Item{missing, dependent, independent},
	}

	err := RunPlan(context.Background(), r, p, true, nil)
	require.Error(t, err)

	var failure *xerrors.PlanFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, 2, failure.Failed)

	require.Equal(t, plan.StatusStepFailed, missing.Status)
	require.Equal(t, plan.StatusPrereqsFailed, dependent.Status)
	require.Equal(t, plan.StatusSuccess, independent.Status)
}

// TestRunPlanAbortsImmediatelyWithoutKeepGoing verifies that without
// keep_going, the first failure is returned straight away and later items
// never run.
func TestRunPlanAbortsImmediatelyWithoutKeepGoing(t *testing.T) {
	cfg := newDriverTestConfig(t)
	r := &Runner{Config: cfg}

	missing := &plan.Item{Key: toolKey("missing"), Active: true}
	dependent := &plan.Item{Key: toolKey("gcc"), Active: true, BuildEdges: []plan.Key{missing.Key}}

	p := &plan.Plan{
		Items: map[plan.Key]*plan.Item{missing.Key: missing, dependent.Key: dependent},
		Order: []*plan.Item{missing, dependent},
	}

	err := RunPlan(context.Background(), r, p, false, nil)
	require.Error(t, err)

	var failure *xerrors.PlanFailure
	require.False(t, errors.As(err, &failure), "expected the raw step error, not a PlanFailure, when keep_going is off")
	require.Equal(t, plan.StatusStepFailed, missing.Status)
	require.Equal(t, plan.StatusNotRun, dependent.Status)
}

// WANT_TOOL/WANT_PKG denote a dependency outside the build scope: if
// activated at all, the plan must fail unconditionally, even when the
// named subject is perfectly well known to the manifest.
func TestWantToolAlwaysFailsEvenForKnownTool(t *testing.T) {
	cfg := newDriverTestConfig(t)
	r := &Runner{Config: cfg}

	err := r.WantTool(context.Background(), graph.SubjectID{Kind: graph.KindTool, Name: "gcc"})
	require.Error(t, err)
	var failure *xerrors.ExecutionFailure
	require.ErrorAs(t, err, &failure)

	err = r.WantTool(context.Background(), graph.SubjectID{Kind: graph.KindTool, Name: "missing"})
	require.Error(t, err)
}

func TestWantPkgAlwaysFailsEvenForKnownPkg(t *testing.T) {
	cfg := newDriverTestConfig(t)
	r := &Runner{Config: cfg}

	err := r.WantPkg(context.Background(), graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"})
	require.Error(t, err)
	var failure *xerrors.ExecutionFailure
	require.ErrorAs(t, err, &failure)
}
