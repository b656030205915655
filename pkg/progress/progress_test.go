//go:build !integration

package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterEmitsOneDocumentPerEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Emit(Event{
		NThis:   1,
		NAll:    2,
		Status:  StatusSuccess,
		Action:  "FETCH_SRC",
		Subject: "src:zlib",
	}))
	require.NoError(t, w.Emit(Event{
		NThis:   2,
		NAll:    2,
		Status:  StatusPrereqsFailed,
		Action:  "CONFIGURE_PKG",
		Subject: "pkg:libfoo",
	}))

	docs := strings.Split(strings.TrimSuffix(buf.String(), "...\n"), "...\n")
	require.Len(t, docs, 2)
	require.Contains(t, docs[0], "n_this: 1")
	require.Contains(t, docs[0], "status: success")
	require.Contains(t, docs[1], "status: prereqs-failed")
	require.Contains(t, docs[1], "subject: pkg:libfoo")
}

func TestEventOmitsArchitectureWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Emit(Event{NThis: 1, NAll: 1, Status: StatusSuccess, Action: "RUN", Subject: "task:check"}))
	require.NotContains(t, buf.String(), "architecture")
}

func TestArtifactFilesAlwaysPresentAsList(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Emit(Event{NThis: 1, NAll: 1, Status: StatusSuccess, Action: "CHECKOUT_SRC", Subject: "src:zlib"}))
	require.Contains(t, buf.String(), "artifact_files: []")
}
