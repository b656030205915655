// Package stringutil provides small string-coercion and sanitization helpers
// shared by the config loader and the action driver.
package stringutil

import "fmt"

// ParseVersionValue converts a YAML-decoded rolling_id/version value (which
// may surface as string, int, int64, uint64, or float64 depending on how it
// was quoted in the manifest) to its string form.
func ParseVersionValue(version any) string {
	switch v := version.(type) {
	case string:
		return v
	case int, int64, uint64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}
