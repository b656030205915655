// Package progress implements the optional progress stream spec §6
// describes: one YAML document per scheduled plan item, appended to a
// progress file as the driver works through the plan.
package progress

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
)

// Status mirrors the four values spec §6 names for a progress event.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusFailure       Status = "failure"
	StatusPrereqsFailed Status = "prereqs-failed"
	StatusNotWanted     Status = "not-wanted"
)

// ArtifactFile is one entry of a RUN task's declared artifact_files,
// reported only for free-standing run actions, matching base.py's
// progress emitter (only Action.RUN populates artifact_files).
type ArtifactFile struct {
	Name         string `yaml:"name"`
	Filepath     string `yaml:"filepath"`
	Architecture string `yaml:"architecture"`
}

// Event is one appended progress document.
type Event struct {
	NThis         int            `yaml:"n_this"`
	NAll          int            `yaml:"n_all"`
	Status        Status         `yaml:"status"`
	Action        string         `yaml:"action"`
	Subject       string         `yaml:"subject"`
	Architecture  string         `yaml:"architecture,omitempty"`
	ArtifactFiles []ArtifactFile `yaml:"artifact_files"`
}

// Writer appends Events to an underlying stream as explicit-end YAML
// documents ("...\n" terminated), so a reader can tail the file and parse
// one document at a time without buffering the whole stream.
type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Emit(ev Event) error {
	if ev.ArtifactFiles == nil {
		ev.ArtifactFiles = []ArtifactFile{}
	}
	data, err := yaml.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.out.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w.out, "...\n")
	return err
}

// FormatDuration renders a step's wall-clock time the way interactive
// summaries (not the machine-readable Event stream) show it to a user,
// e.g. "3 minutes ago" for a step that started that long ago.
func FormatDuration(started time.Time) string {
	return humanize.RelTime(started, time.Now(), "ago", "from now")
}
