package config

import (
	"regexp"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

// atVarPattern matches @NAME@ substitutions, ported verbatim from
// xbstrap/base.py's replace_at_vars (the character class is exactly
// [\w:-], which is why @OPTION:name@ and @THIS_SOURCE_DIR@ both match but a
// literal "@" elsewhere in a string does not).
var atVarPattern = regexp.MustCompile(`@([\w:-]+)@`)

// Resolver maps a substitution variable name to its value. Returning false
// means the variable is unknown, which ReplaceAtVars turns into a
// ConfigError (ReplaceAtVars is the identity on strings with no @...@
// sequences; unknown variables raise, per spec §8 invariant 7).
type Resolver func(varname string) (string, bool)

// ReplaceAtVars expands every @NAME@ occurrence in s using resolve.
func ReplaceAtVars(s string, resolve Resolver) (string, error) {
	var firstErr error
	out := atVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := atVarPattern.FindStringSubmatch(match)[1]
		val, ok := resolve(name)
		if !ok {
			firstErr = xerrors.NewConfigError("unexpected substitution %s", name)
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// baseResolver builds the common @SOURCE_ROOT@/@BUILD_ROOT@/@SYSROOT_DIR@/
// @PARALLELISM@/@PREFIX@/@OPTION:name@ substitutions every manifest string
// may use, chained with extra for the context-specific variables
// (@THIS_SOURCE_DIR@ etc.) a caller supplies.
func (c *Config) baseResolver(extra Resolver) Resolver {
	return func(name string) (string, bool) {
		if extra != nil {
			if v, ok := extra(name); ok {
				return v, true
			}
		}
		switch name {
		case "SOURCE_ROOT":
			return c.SourceRoot, true
		case "BUILD_ROOT":
			return c.BuildRoot(), true
		case "SYSROOT_DIR":
			return c.SysrootDir(), true
		case "PARALLELISM":
			return c.Parallelism(), true
		case "PREFIX":
			return "/usr", true
		}
		if len(name) > len("OPTION:") && name[:len("OPTION:")] == "OPTION:" {
			optName := name[len("OPTION:"):]
			if v, ok := c.OptionValue(optName); ok {
				return stringValue(v), true
			}
		}
		return "", false
	}
}

// Substitute expands @...@ variables in s using the config's base
// resolver plus any extra context-specific variables.
func (c *Config) Substitute(s string, extra Resolver) (string, error) {
	return ReplaceAtVars(s, c.baseResolver(extra))
}
