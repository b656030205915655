// Package graph defines the typed subject identity shared by the config,
// probe, plan, and action packages: every source, tool, tool stage, package,
// and task is addressed by a stable SubjectID regardless of which package is
// looking it up.
package graph

import "fmt"

// Kind discriminates the five subject variants the config model produces.
type Kind string

const (
	KindSource    Kind = "src"
	KindTool      Kind = "tool"
	KindToolStage Kind = "tool-stage"
	KindPackage   Kind = "pkg"
	KindTask      Kind = "task"
)

// SubjectID is the stable, comparable identity of a subject: (kind, name,
// stage?, parent?). It is used as a map key throughout pkg/probe and
// pkg/plan, so it must remain a plain comparable struct (no slices/maps).
type SubjectID struct {
	Kind   Kind
	Name   string
	Stage  string // tool stage name; "" for the default/only stage
	Parent string // owning tool/package name for a pkg-task or tool-task
}

// String renders a SubjectID the way crossforge reports it in error
// messages and progress output: "kind:parent.name@stage".
func (id SubjectID) String() string {
	s := string(id.Kind) + ":"
	if id.Parent != "" {
		s += id.Parent + "."
	}
	s += id.Name
	if id.Stage != "" {
		s += "@" + id.Stage
	}
	return s
}

// OrderingKey returns a string usable to sort SubjectIDs deterministically:
// kind, parent, name, and stage joined by NUL bytes, so subjects of
// different kinds compare by the kind's string value.
func (id SubjectID) OrderingKey() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", id.Kind, id.Parent, id.Name, id.Stage)
}

// Subject is implemented by every config entity that can be depended on or
// appear as a PlanItem target.
type Subject interface {
	SubjectID() SubjectID
	Kind() Kind
}
