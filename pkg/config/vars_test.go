//go:build !integration

package config

import "testing"

func TestReplaceAtVarsIdentityOnNoMatch(t *testing.T) {
	out, err := ReplaceAtVars("plain string, no vars", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain string, no vars" {
		t.Fatalf("got %q", out)
	}
}

func TestReplaceAtVarsExpandsKnown(t *testing.T) {
	resolve := func(name string) (string, bool) {
		if name == "FOO" {
			return "bar", true
		}
		return "", false
	}
	out, err := ReplaceAtVars("prefix-@FOO@-suffix", resolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "prefix-bar-suffix" {
		t.Fatalf("got %q", out)
	}
}

func TestReplaceAtVarsRejectsUnknown(t *testing.T) {
	_, err := ReplaceAtVars("@UNKNOWN@", func(string) (string, bool) { return "", false })
	if err == nil {
		t.Fatal("expected an error for an unresolved substitution")
	}
}

func TestReplaceAtVarsAllowsColonAndDash(t *testing.T) {
	resolve := func(name string) (string, bool) {
		if name == "OPTION:build-type" {
			return "release", true
		}
		return "", false
	}
	out, err := ReplaceAtVars("@OPTION:build-type@", resolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "release" {
		t.Fatalf("got %q", out)
	}
}
