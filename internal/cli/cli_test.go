package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-stream/subreview/internal/subtitle"
)

const inspectSRT = `1
00:00:01,000 --> 00:00:03,000
Hello

2
00:00:02,000 --> 00:00:04,000
Overlap

3
00:00:05,000
`

func TestWriteInspectionUsesLastEnd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeInspection(&buf, subtitle.ParseReport(inspectSRT), 0, 2.5))

	out := buf.String()
	assert.Contains(t, out, "2 entries over 00:04.0, cursor at 00:02.5")
	assert.Contains(t, out, "25.00")
	assert.Contains(t, out, "50.00")
	assert.Equal(t, 2, strings.Count(out, "*"), "both overlapping entries are active")
	assert.Contains(t, out, "Ruler every 5s: 00:00")
	assert.Contains(t, out, "Dropped block 2: fewer than three lines")
}

func TestWriteInspectionUnknownDuration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeInspection(&buf, subtitle.Report{}, 0, 0))
	assert.Contains(t, buf.String(), "duration unknown")
}

func TestWriteInspectionMalformed(t *testing.T) {
	report := subtitle.ParseReport("7\nxx --> 00:00:02,000\nBroken\n")
	var buf bytes.Buffer
	require.NoError(t, writeInspection(&buf, report, 10, 0))
	assert.Contains(t, buf.String(), "Malformed timestamps: 7")
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.srt")
	require.NoError(t, os.WriteFile(path, []byte(inspectSRT), 0o644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", path, "--duration", "100", "--at", "1"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "over 01:40.0")
	assert.Contains(t, out.String(), "Ruler every 10s")
}

func TestInspectRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"inspect", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported subtitle format")
}
