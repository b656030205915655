package plan

// ExecutionStatus is the outcome of running (or skipping) an active item,
// recorded once the driver has attempted it.
type ExecutionStatus int

const (
	StatusNotRun ExecutionStatus = iota
	StatusSuccess
	StatusStepFailed
	StatusPrereqsFailed
)

func (s ExecutionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusStepFailed:
		return "STEP_FAILED"
	case StatusPrereqsFailed:
		return "PREREQS_FAILED"
	default:
		return "NOT_RUN"
	}
}

// color marks a node's DFS state during the topological sort.
type color int

const (
	white color = iota // not yet visited
	gray               // on the stack, expanding
	black              // fully ordered
)

// Item is one materialized (action, subject) pair plus everything the
// ordering and activation passes accumulate on it.
type Item struct {
	Key Key

	// BuildEdges must run before this item, and activating this item
	// forces their activation too.
	BuildEdges []Key
	// RequireEdges must run before this item when it is active; their
	// activation only forces mine when I am reachable on the build span.
	RequireEdges []Key
	// OrderBefore/OrderAfter affect ordering only, never activation.
	OrderBefore []Key
	OrderAfter  []Key

	// Probe-derived state, filled in before ordering.
	Missing      bool
	Updatable    bool
	HasTimestamp bool
	TimestampFn  func() (int64, bool) // lazily-evaluated marker mtime, unix seconds

	BuildSpan bool
	Outdated  bool
	Active    bool
	Status    ExecutionStatus

	// ordering bookkeeping
	edgeList  []Key // outgoing edges in the merged ordering DAG
	state     color
	resolvedN int
}

// IsMissing is the activation algorithm's name for "probe reported
// missing", true for every non-idempotent action per plan.Action.
func (it *Item) IsMissing() bool { return it.Missing }

// Timestamp returns the item's outdatedness timestamp and whether one is
// defined; undefined timestamps never participate in outdatedness
// comparisons (spec §4.4.3 step 4).
func (it *Item) Timestamp() (int64, bool) {
	if it.TimestampFn == nil {
		return 0, false
	}
	return it.TimestampFn()
}
