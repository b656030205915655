package stringutil

import (
	"regexp"
	"strings"

	"github.com/crossforge/crossforge/pkg/xlog"
)

var sanitizeLog = xlog.Named("stringutil:sanitize")

// Regex patterns for detecting potential secret values leaking into step
// output or error messages (e.g. a CARGO_HOME token, a mirror URL credential
// echoed back by a failing fetch).
var (
	secretNamePattern       = regexp.MustCompile(`\b([A-Z][A-Z0-9]*_[A-Z0-9_]+)\b`)
	pascalCaseSecretPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*(?:Token|Key|Secret|Password|Credential|Auth))\b`)

	// Identifiers that look like secrets by the pattern above but are common
	// build-plan vocabulary and must never be redacted.
	commonBuildKeywords = map[string]bool{
		"SOURCE_ROOT":        true,
		"BUILD_ROOT":         true,
		"SYSROOT_DIR":        true,
		"PKG_CONFIG_PATH":    true,
		"PKG_CONFIG_LIBDIR":  true,
		"LD_LIBRARY_PATH":    true,
		"ACLOCAL_PATH":       true,
		"CARGO_HOME":         true,
		"SOURCE_DATE_EPOCH":  true,
		"PATH":               true,
		"HOME":               true,
		"SHELL":              true,
		"PARALLELISM":        true,
	}
)

// SanitizeErrorMessage redacts identifiers that look like secret names from
// step output before it is logged, so a failing fetch/build step cannot leak
// credential-shaped environment variable names into build logs.
func SanitizeErrorMessage(message string) string {
	if message == "" {
		return message
	}

	sanitized := secretNamePattern.ReplaceAllStringFunc(message, func(match string) string {
		if commonBuildKeywords[match] {
			return match
		}
		if strings.HasPrefix(match, "XBSTRAP_") {
			return match
		}
		return "[REDACTED]"
	})

	sanitized = pascalCaseSecretPattern.ReplaceAllString(sanitized, "[REDACTED]")

	if sanitized != message {
		sanitizeLog.Debug("redacted secret-shaped identifier from message")
	}

	return sanitized
}
