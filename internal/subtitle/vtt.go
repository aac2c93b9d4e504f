package subtitle

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/video-stream/subreview/internal/timecode"
)

// ParseVTT reads WebVTT content into entries so VTT uploads go through the
// same layout path as SRT ones.
func ParseVTT(r io.Reader) ([]Entry, error) {
	subs, err := astisub.ReadFromWebVTT(r)
	if err != nil {
		return nil, fmt.Errorf("read webvtt: %w", err)
	}

	entries := make([]Entry, 0, len(subs.Items))
	for i, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, l := range item.Lines {
			if s := strings.TrimSpace(l.String()); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) == 0 {
			continue
		}
		entries = append(entries, Entry{
			ID:        strconv.Itoa(i + 1),
			StartTime: timecode.FormatSRT(item.StartAt.Seconds()),
			EndTime:   timecode.FormatSRT(item.EndAt.Seconds()),
			Text:      strings.Join(lines, " "),
		})
	}
	return entries, nil
}

// WriteVTT writes entries as WebVTT for the browser's <track> element.
// Entries whose times do not parse are left out.
func WriteVTT(w io.Writer, entries []Entry) error {
	subs := astisub.NewSubtitles()
	for _, e := range entries {
		if e.Malformed() {
			continue
		}
		subs.Items = append(subs.Items, &astisub.Item{
			StartAt: seconds(e.Start()),
			EndAt:   seconds(e.End()),
			Lines:   []astisub.Line{{Items: []astisub.LineItem{{Text: e.Text}}}},
		})
	}

	if len(subs.Items) == 0 {
		// astisub refuses to write an empty file; an empty track is still valid VTT.
		_, err := io.WriteString(w, "WEBVTT\n\n")
		return err
	}
	if err := subs.WriteToWebVTT(w); err != nil {
		return fmt.Errorf("write webvtt: %w", err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
