package vcs

import (
	"context"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/probe"
)

// Checker adapts a Dispatcher to probe.VCSChecker, the interface
// pkg/probe.Prober uses to answer FETCH_SRC/CHECKOUT_SRC probes it cannot
// settle from marker files alone.
type Checker struct {
	Dispatcher *Dispatcher
	Config     *config.Config
}

func (c *Checker) ProbeSource(src *config.Source, checkRemotes probe.CheckRemotesLevel) (probe.Result, error) {
	backend := c.Dispatcher.For(src)
	if backend == nil {
		return probe.Result{Missing: true}, nil
	}
	status, err := backend.Status(context.Background(), c.Config, src, checkRemotes != probe.CheckRemotesNever)
	if err != nil {
		return probe.Result{}, err
	}
	return probe.Result{Missing: !status.Exists, Updatable: status.Updatable}, nil
}
