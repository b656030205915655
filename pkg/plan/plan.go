package plan

import (
	"context"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
)

// Prober is the subset of pkg/probe.Prober that Compute needs; declared
// here (rather than imported) so this package never depends on pkg/probe,
// preserving the one-directional probe→plan dependency.
type Prober interface {
	Probe(action Action, id graph.SubjectID, checkRemotes int, usePkgBackend bool) (missing, updatable bool, timestampUnix int64, hasTimestamp bool, err error)
}

// Options bundles everything Compute needs beyond the Config and the
// wanted set.
type Options struct {
	Materialize MaterializeOptions
	Activate    ActivateOptions
	AutoScope   bool
	PRNGShuffle func([]Key)
}

// Plan is the fully computed result: every materialized item, the
// deterministic topological order, and which items ended up active.
type Plan struct {
	Items map[Key]*Item
	Order []*Item
}

// Scheduled returns the active items in execution order, the sequence the
// driver (pkg/action) actually runs.
func (p *Plan) Scheduled() []*Item {
	var out []*Item
	for _, it := range p.Order {
		if it.Active {
			out = append(out, it)
		}
	}
	return out
}

// Compute runs materialize → probe-annotate → order → activate, per spec
// §4.4. Items are probed one at a time through prober, and ctx is not
// consulted; ordering and activation are synchronous, single-threaded passes.
func Compute(ctx context.Context, cfg *config.Config, wanted []Key, prober Prober, opts Options) (*Plan, []Key, error) {
	if opts.AutoScope && opts.Materialize.Scope == nil {
		opts.Materialize.Scope = ComputeAutoScope(cfg, wanted)
	}

	items, err := Materialize(cfg, wanted, opts.Materialize)
	if err != nil {
		return nil, nil, err
	}

	checkRemotes := 0
	if opts.Activate.Update {
		checkRemotes = 1
	}
	if prober != nil {
		for k, it := range items {
			missing, updatable, ts, hasTS, err := prober.Probe(k.Action, k.Subject, checkRemotes, opts.Materialize.UsePackageBackend)
			if err != nil {
				return nil, nil, err
			}
			it.Missing = missing
			it.Updatable = updatable
			if hasTS {
				tsCopy := ts
				it.TimestampFn = func() (int64, bool) { return tsCopy, true }
			}
		}
	} else {
		for _, it := range items {
			it.Missing = true
		}
	}

	order, err := Order(items, opts.PRNGShuffle)
	if err != nil {
		return nil, nil, err
	}

	opts.Activate.Wanted = wanted
	violations := Activate(order, items, opts.Activate)

	return &Plan{Items: items, Order: order}, violations, nil
}
