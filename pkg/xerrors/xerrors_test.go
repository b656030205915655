//go:build !integration

package xerrors

import (
	"errors"
	"testing"
)

func TestConfigErrorFormatting(t *testing.T) {
	plain := NewConfigError("duplicate source %q", "mlibc")
	if plain.Error() != `duplicate source "mlibc"` {
		t.Errorf("unexpected message: %s", plain.Error())
	}

	withFile := NewConfigErrorIn("bootstrap.yml", "unknown tool %q", "gcc")
	if withFile.Error() != `bootstrap.yml: unknown tool "gcc"` {
		t.Errorf("unexpected message: %s", withFile.Error())
	}
}

func TestExecutionFailureUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	ef := &ExecutionFailure{Action: "build_pkg", SubjectKind: "package", SubjectName: "mlibc", Cause: cause}
	if !errors.Is(ef, cause) {
		t.Error("expected errors.Is to find wrapped cause")
	}
	if ef.Error() == "" {
		t.Error("expected non-empty error message")
	}
}

func TestIoErrorAndNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	ioErr := &IoError{Path: "/srv/sysroot", Cause: cause}
	if !errors.Is(ioErr, cause) {
		t.Error("expected IoError to unwrap its cause")
	}

	netErr := &NetworkError{URL: "https://example.org/mlibc.tar.gz", Cause: cause}
	if !errors.Is(netErr, cause) {
		t.Error("expected NetworkError to unwrap its cause")
	}
}

func TestRollingIdUnavailableError(t *testing.T) {
	err := &RollingIdUnavailableError{SourceName: "mlibc"}
	if err.Error() == "" {
		t.Error("expected non-empty message")
	}
}
