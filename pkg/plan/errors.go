package plan

import "strings"

// OnlyWantedViolationError reports that activation reached subjects
// outside the wanted set while ActivateOptions.OnlyWanted was set (spec
// §4.4.3 step 5): the plan is rejected rather than silently widened.
type OnlyWantedViolationError struct {
	Violations []Key
}

func (e *OnlyWantedViolationError) Error() string {
	var b strings.Builder
	b.WriteString("plan would activate items outside the wanted set: ")
	for i, k := range e.Violations {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	return b.String()
}
