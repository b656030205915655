// Package xerrors defines the error taxonomy raised by crossforge's config
// loader, plan engine, and step executor.
package xerrors

import "fmt"

// ConfigError reports a problem loading or validating the root manifest or
// one of its imports: an unknown substitution, a duplicate subject name, a
// malformed xbps repo entry, and similar manifest-shape problems.
type ConfigError struct {
	File    string // manifest file the error was found in, if known
	Message string
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// NewConfigError builds a ConfigError with no associated file.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// NewConfigErrorIn builds a ConfigError attributed to a manifest file.
func NewConfigErrorIn(file, format string, args ...any) *ConfigError {
	return &ConfigError{File: file, Message: fmt.Sprintf(format, args...)}
}

// PlanError reports a problem building the materialized plan: an unknown
// subject referenced by a dependency edge, a cycle in the order graph, or an
// auto-scope substitution that could not be resolved.
type PlanError struct {
	Message string
}

func (e *PlanError) Error() string { return e.Message }

// NewPlanError builds a PlanError.
func NewPlanError(format string, args ...any) *PlanError {
	return &PlanError{Message: fmt.Sprintf(format, args...)}
}

// RollingIdUnavailableError is raised when a source's @ROLLING_ID@
// substitution is requested but the working tree has no resolvable git
// commit (e.g. the source has not been checked out yet).
type RollingIdUnavailableError struct {
	SourceName string
}

func (e *RollingIdUnavailableError) Error() string {
	return fmt.Sprintf("rolling id unavailable for source %q", e.SourceName)
}

// ProgramFailure is returned by cmd/crossforge's top-level run to signal a
// non-zero, non-plan-specific process exit (invalid arguments, an I/O
// failure reading the manifest, and so on). It carries no message of its
// own: the underlying cause has already been logged by the caller.
type ProgramFailure struct{}

func (e *ProgramFailure) Error() string { return "program failed" }

// ExecutionFailure reports that a single plan step's action handler
// returned a non-zero exit status or otherwise failed irrecoverably.
type ExecutionFailure struct {
	Action      string
	SubjectKind string
	SubjectName string
	Cause       error
}

func (e *ExecutionFailure) Error() string {
	msg := fmt.Sprintf("action %s of %s %s failed", e.Action, e.SubjectKind, e.SubjectName)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ExecutionFailure) Unwrap() error { return e.Cause }

// PlanFailure signals that one or more steps in a plan run failed; raised
// by the driver after a keep_going run has exhausted every runnable step.
type PlanFailure struct {
	Failed int
}

func (e *PlanFailure) Error() string {
	return fmt.Sprintf("plan failed: %d step(s) did not complete", e.Failed)
}

// IoError wraps an unexpected filesystem error encountered while reading or
// writing manifests, markers, or build artifacts.
type IoError struct {
	Path  string
	Cause error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("i/o error at %s: %v", e.Path, e.Cause)
}

func (e *IoError) Unwrap() error { return e.Cause }

// NetworkError wraps an unexpected error performing a VCS fetch, archive
// download, or repodata pull over the network.
type NetworkError struct {
	URL   string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }
