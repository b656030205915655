package stringutil

import (
	"strings"
	"testing"
)

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{name: "empty message", message: "", expected: ""},
		{name: "no secrets", message: "regular error message", expected: "regular error message"},
		{name: "snake_case secret", message: "error accessing MY_SECRET_KEY", expected: "error accessing [REDACTED]"},
		{name: "multiple secrets", message: "failed to use API_TOKEN and DATABASE_PASSWORD", expected: "failed to use [REDACTED] and [REDACTED]"},
		{name: "pascal case secret", message: "invalid GitHubToken provided", expected: "invalid [REDACTED] provided"},
		{name: "build keyword not redacted", message: "SOURCE_ROOT is not set", expected: "SOURCE_ROOT is not set"},
		{name: "xbstrap env not redacted", message: "XBSTRAP_BUILD_ROOT missing", expected: "XBSTRAP_BUILD_ROOT missing"},
		{name: "path keyword not redacted", message: "PATH variable is not set", expected: "PATH variable is not set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeErrorMessage(tt.message)
			if result != tt.expected {
				t.Errorf("SanitizeErrorMessage(%q) = %q; want %q", tt.message, result, tt.expected)
			}
		})
	}
}

func TestSanitizeErrorMessage_MultipleOccurrences(t *testing.T) {
	message := "MY_SECRET is used twice: MY_SECRET here and MY_SECRET there"
	expected := "[REDACTED] is used twice: [REDACTED] here and [REDACTED] there"
	if got := SanitizeErrorMessage(message); got != expected {
		t.Errorf("SanitizeErrorMessage(%q) = %q; want %q", message, got, expected)
	}
}

func TestSanitizeErrorMessage_PascalCaseVariants(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		shouldRedact bool
	}{
		{"Token suffix", "invalid GitHubToken", true},
		{"Key suffix", "missing ApiKey", true},
		{"Secret suffix", "bad DeploySecret", true},
		{"no suffix", "invalid PackageBuild", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeErrorMessage(tt.message)
			redacted := strings.Contains(result, "[REDACTED]")
			if tt.shouldRedact != redacted {
				t.Errorf("SanitizeErrorMessage(%q) redacted=%v want=%v", tt.message, redacted, tt.shouldRedact)
			}
		})
	}
}
