package config

// ScriptStep wraps one step of a regenerate/configure/build/install/task
// script: a shell invocation plus the environment and workdir overlay the
// step executor applies on top of the ambient build environment.
type ScriptStep struct {
	yml          map[string]any
	containerless bool // forced containerless, e.g. for host tasks that never touch a sandbox
}

func newScriptStep(yml map[string]any) ScriptStep {
	return ScriptStep{yml: yml}
}

// NewRawStep builds a ScriptStep straight from an argv, for callers that
// run a program against a tool's environment without a script.yml entry
// behind it (xbstrap's runtool command).
func NewRawStep(args []string) ScriptStep {
	argv := make([]any, len(args))
	for i, a := range args {
		argv[i] = a
	}
	return ScriptStep{yml: map[string]any{"args": argv}}
}

// Args returns the step's argv. A single string form is returned as a
// one-element slice carrying the raw shell string; callers that need "sh
// -c" wrapping detect that case via IsShellString.
func (s ScriptStep) Args() []string {
	switch v := s.yml["args"].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if str, ok := it.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// IsShellString reports whether Args()'s single entry is a raw shell
// command string (args: "./configure --prefix=@PREFIX@") that the step
// executor must wrap as `sh -c <string>` rather than exec'ing directly.
func (s ScriptStep) IsShellString() bool {
	_, ok := s.yml["args"].(string)
	return ok
}

// Environ returns the step's environ map (string -> string after YAML
// decoding collapses scalars).
func (s ScriptStep) Environ() map[string]string {
	out := make(map[string]string)
	for k, v := range getMap(s.yml, "environ") {
		out[k] = stringValue(v)
	}
	return out
}

// Workdir returns the step's explicit workdir override, or "" if unset (the
// step executor then chooses a context-appropriate default).
func (s ScriptStep) Workdir() string {
	return getString(s.yml, "workdir")
}

// Containerless reports whether this step must run outside any sandbox.
func (s ScriptStep) Containerless() bool {
	return getBoolOr(s.yml, "containerless", false) || s.containerless
}

// IsolateNetwork returns the step's isolate_network override and whether it
// was explicitly set (nil in the original Python meant "inherit site
// default").
func (s ScriptStep) IsolateNetwork() (bool, bool) {
	v, ok := s.yml["isolate_network"]
	if !ok {
		return false, false
	}
	b, _ := v.(bool)
	return b, true
}

// Quiet reports whether the step's stdout/stderr should be suppressed from
// the progress stream on success.
func (s ScriptStep) Quiet() bool {
	return getBoolOr(s.yml, "quiet", false)
}

// CargoHome reports whether CARGO_HOME should be set for this step, default
// true.
func (s ScriptStep) CargoHome() bool {
	return getBoolOr(s.yml, "cargo_home", true)
}
