package plan

// ActivateOptions carries the policy flags that decide which materialized
// items actually run, per spec §4.4.3.
type ActivateOptions struct {
	Wanted          []Key
	Check           bool // a wanted item activates only when its probe reports missing
	Update          bool // also activate missing/updatable items and outdated build edges
	Recursive       bool // --update's outdatedness propagation also crosses require edges
	RestrictUpdates bool // --update/--recursive only consider items on the build span
	OnlyWanted      bool // report active items outside Wanted as a plan failure
}

// Activate runs the five-step activation algorithm over an ordered item
// set, already annotated with probe results (Item.Missing/Updatable/
// TimestampFn). It mutates items in place and returns the active items
// outside Wanted when OnlyWanted is violated.
func Activate(order []*Item, items map[Key]*Item, opts ActivateOptions) (violations []Key) {
	visited := make(map[Key]bool)
	var stack []Key

	activate := func(root Key) {
		stack = stack[:0]
		visited[root] = true
		stack = append(stack, root)
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			it := items[k]
			if it.Active {
				continue
			}
			it.Active = true

			push := func(edges []Key) {
				for _, e := range edges {
					if visited[e] {
						continue
					}
					visited[e] = true
					dep := items[e]
					if dep != nil && dep.Missing {
						stack = append(stack, e)
					}
				}
			}
			push(it.BuildEdges)
			push(it.RequireEdges)
		}
	}

	// Step 1: mark build_span, activate wanted items whose state requires it.
	for _, w := range opts.Wanted {
		it, ok := items[w]
		if !ok {
			continue
		}
		it.BuildSpan = true
		if !opts.Check || it.Missing {
			activate(w)
		}
	}

	// Step 2: propagate build_span backwards across build edges.
	for i := len(order) - 1; i >= 0; i-- {
		it := order[i]
		if !it.BuildSpan {
			continue
		}
		for _, dep := range it.BuildEdges {
			if depItem := items[dep]; depItem != nil {
				depItem.BuildSpan = true
			}
		}
	}

	// Step 4: --update/--recursive outdatedness propagation.
	if opts.Update || opts.Recursive {
		isOutdated := func(it, dep *Item) bool {
			ts, ok1 := it.Timestamp()
			depTs, ok2 := dep.Timestamp()
			if !ok1 || !ok2 {
				return false
			}
			return depTs > ts
		}

		for _, it := range order {
			if opts.RestrictUpdates && !it.BuildSpan {
				continue
			}
			if it.Missing || it.Updatable {
				activate(it.Key)
			}
			for _, depKey := range it.BuildEdges {
				dep := items[depKey]
				if dep == nil {
					continue
				}
				if dep.Active {
					activate(it.Key)
				} else if isOutdated(it, dep) {
					it.Outdated = true
					activate(it.Key)
				}
			}
			if opts.Recursive {
				for _, depKey := range it.RequireEdges {
					dep := items[depKey]
					if dep == nil {
						continue
					}
					if dep.Active {
						activate(it.Key)
					} else if isOutdated(it, dep) {
						it.Outdated = true
						activate(it.Key)
					}
				}
			}
		}
	}

	// Step 5: only_wanted.
	if opts.OnlyWanted {
		wantedSet := make(map[Key]bool, len(opts.Wanted))
		for _, w := range opts.Wanted {
			wantedSet[w] = true
		}
		for _, it := range order {
			if it.Active && !wantedSet[it.Key] {
				violations = append(violations, it.Key)
			}
		}
	}
	return violations
}
