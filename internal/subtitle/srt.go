// Package subtitle parses subtitle files into timed entries.
package subtitle

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/video-stream/subreview/internal/timecode"
)

// Entry is one caption. Times are kept exactly as written in the source file.
type Entry struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Text      string `json:"text"`
}

// Start returns the start time in seconds, NaN when it does not parse.
func (e Entry) Start() float64 { return timecode.ParseTime(e.StartTime) }

// End returns the end time in seconds, NaN when it does not parse.
func (e Entry) End() float64 { return timecode.ParseTime(e.EndTime) }

// Malformed reports whether either timestamp fails to parse.
func (e Entry) Malformed() bool {
	return !timecode.Valid(e.Start()) || !timecode.Valid(e.End())
}

// Rejection describes a block that did not produce an entry.
type Rejection struct {
	Block  int    `json:"block"`
	Reason string `json:"reason"`
}

// Report is the outcome of parsing a file.
type Report struct {
	Entries  []Entry     `json:"entries"`
	Rejected []Rejection `json:"rejected"`
	// Malformed lists IDs of kept entries whose timestamps do not parse.
	Malformed []string `json:"malformed"`
}

const (
	reasonShortBlock = "fewer than three lines"
	reasonEmptyText  = "no text"
)

var subtitleExtensions = map[string]bool{
	".srt": true, ".vtt": true,
}

// IsSubtitleFile reports whether name has an extension the parser accepts.
func IsSubtitleFile(name string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// Parse splits SRT text into entries, in file order.
func Parse(content string) []Entry {
	return ParseReport(content).Entries
}

// ParseReport parses SRT text and also reports what was dropped.
//
// Blocks are separated by a blank line. A block needs an index line, a
// "start --> end" line and at least one text line; text lines are joined with
// single spaces. Blocks that are too short, and entries that end up without
// text, are dropped. Entries are not sorted by time.
func ParseReport(content string) Report {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	report := Report{
		Entries:   []Entry{},
		Rejected:  []Rejection{},
		Malformed: []string{},
	}

	for i, block := range strings.Split(content, "\n\n") {
		block = strings.Trim(block, "\n")
		if block == "" {
			// Trailing blank lines or runs of blank lines between blocks.
			continue
		}

		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			report.Rejected = append(report.Rejected, Rejection{Block: i, Reason: reasonShortBlock})
			continue
		}

		entry := parseBlock(i, lines)
		if entry.Text == "" {
			report.Rejected = append(report.Rejected, Rejection{Block: i, Reason: reasonEmptyText})
			continue
		}
		if entry.Malformed() {
			report.Malformed = append(report.Malformed, entry.ID)
		}
		report.Entries = append(report.Entries, entry)
	}

	return report
}

func parseBlock(index int, lines []string) Entry {
	id := strings.TrimSpace(lines[0])
	if id == "" {
		id = positionalID(index)
	}

	start, end, _ := strings.Cut(lines[1], "-->")

	text := make([]string, 0, len(lines)-2)
	for _, l := range lines[2:] {
		if l = strings.TrimSpace(l); l != "" {
			text = append(text, l)
		}
	}

	return Entry{
		ID:        id,
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
		Text:      strings.Join(text, " "),
	}
}

// positionalID names a block that has no index line. The "#" prefix keeps it
// apart from numeric SRT indexes.
func positionalID(index int) string {
	return "#" + strconv.Itoa(index)
}
