package plan

import (
	"sort"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Order resolves every item's ordering edges (build, require, order_before,
// the reverse of order_after), sorts each edge list by the deterministic
// key, then performs a DFS topological sort. It mirrors xbstrap's
// _do_ordering/_do_order_before pair: build/require/order_before edges all
// become "edge must be ordered before me", and order_after edges are
// installed on the target in reverse.
func Order(items map[Key]*Item, prngShuffle func([]Key)) ([]*Item, error) {
	for _, it := range items {
		it.edgeList = it.edgeList[:0]
		appendResolved(it, it.BuildEdges, items)
		appendResolved(it, it.RequireEdges, items)
		appendResolved(it, it.OrderBefore, items)
	}
	for _, it := range items {
		for _, after := range it.OrderAfter {
			target, ok := items[after]
			if !ok {
				continue
			}
			target.edgeList = append(target.edgeList, it.Key)
		}
	}

	keys := make([]Key, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].SortKey() < keys[j].SortKey() })
	if prngShuffle != nil {
		prngShuffle(keys)
	}
	for _, it := range items {
		sort.Slice(it.edgeList, func(i, j int) bool { return it.edgeList[i].SortKey() < it.edgeList[j].SortKey() })
		if prngShuffle != nil {
			prngShuffle(it.edgeList)
		}
	}

	var order []*Item
	var stack []Key

	visit := func(k Key) error {
		it := items[k]
		switch it.state {
		case white:
			it.state = gray
			stack = append(stack, k)
		case gray:
			return cycleError(items, stack)
		}
		return nil
	}

	for _, root := range keys {
		if err := visit(root); err != nil {
			return nil, err
		}
		for len(stack) > 0 {
			top := items[stack[len(stack)-1]]
			if top.resolvedN == len(top.edgeList) {
				top.state = black
				stack = stack[:len(stack)-1]
				order = append(order, top)
				continue
			}
			next := top.edgeList[top.resolvedN]
			top.resolvedN++
			if err := visit(next); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func appendResolved(it *Item, edges []Key, items map[Key]*Item) {
	for _, e := range edges {
		if _, ok := items[e]; !ok {
			continue
		}
		it.edgeList = append(it.edgeList, e)
	}
}

func cycleError(items map[Key]*Item, stack []Key) error {
	msg := "circular dependency detected:"
	for _, k := range stack {
		msg += "\n  " + items[k].Key.String()
	}
	return xerrors.NewPlanError("%s", msg)
}
