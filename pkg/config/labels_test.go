//go:build !integration

package config

import "testing"

func TestCheckLabelsDisjunctiveMatch(t *testing.T) {
	cfg := newConfig()
	cfg.siteYML = map[string]any{
		"labels": map[string]any{
			"match": []any{"server", "desktop"},
		},
	}
	if !cfg.CheckLabels([]string{"desktop"}) {
		t.Fatal("expected a subject with one of the matched labels to pass")
	}
	if cfg.CheckLabels([]string{"embedded"}) {
		t.Fatal("expected a subject with none of the matched labels to fail")
	}
}

func TestCheckLabelsBan(t *testing.T) {
	cfg := newConfig()
	cfg.siteYML = map[string]any{
		"labels": map[string]any{
			"ban": []any{"experimental"},
		},
	}
	if cfg.CheckLabels([]string{"experimental"}) {
		t.Fatal("expected a banned label to fail")
	}
	if !cfg.CheckLabels([]string{"stable"}) {
		t.Fatal("expected a non-banned label to pass")
	}
}

func TestCheckLabelsNoRestrictions(t *testing.T) {
	cfg := newConfig()
	cfg.siteYML = map[string]any{}
	if !cfg.CheckLabels(nil) {
		t.Fatal("expected no restrictions to allow a subject with no labels")
	}
}
