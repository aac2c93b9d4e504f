package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/video-stream/subreview/internal/media"
	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timecode"
	"github.com/video-stream/subreview/internal/timeline"
)

type inspectOptions struct {
	duration float64
	at       float64
	video    string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file.srt|file.vtt>",
		Short: "Print how a subtitle file lays out on the timeline",
		Long: `inspect parses a subtitle file and prints each entry with its timeline
placement, the ruler marks and any blocks that were dropped. The duration
comes from --duration, then from probing --video with ffprobe, and finally
from the end of the last entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := readReport(f, args[0])
			if err != nil {
				return err
			}
			duration := opts.duration
			if duration <= 0 && opts.video != "" {
				info, err := media.Probe(cmd.Context(), opts.video)
				if err != nil {
					return err
				}
				duration = info.Duration
			}
			return writeInspection(cmd.OutOrStdout(), report, duration, opts.at)
		},
	}

	cmd.Flags().Float64VarP(&opts.duration, "duration", "d", 0, "Media duration in seconds")
	cmd.Flags().StringVar(&opts.video, "video", "", "Video file to probe for the duration")
	cmd.Flags().Float64Var(&opts.at, "at", 0, "Playback time in seconds used to mark active entries")
	return cmd
}

func readReport(r io.Reader, name string) (subtitle.Report, error) {
	if !subtitle.IsSubtitleFile(name) {
		return subtitle.Report{}, fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(name))
	}
	if strings.EqualFold(filepath.Ext(name), ".vtt") {
		entries, err := subtitle.ParseVTT(r)
		if err != nil {
			return subtitle.Report{}, fmt.Errorf("parse %s: %w", name, err)
		}
		return subtitle.Report{Entries: entries}, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return subtitle.Report{}, fmt.Errorf("read %s: %w", name, err)
	}
	return subtitle.ParseReport(string(data)), nil
}

// lastEnd is the latest parseable end time, or 0.
func lastEnd(entries []subtitle.Entry) float64 {
	var end float64
	for _, e := range entries {
		if v := e.End(); timecode.Valid(v) && v > end {
			end = v
		}
	}
	return end
}

func writeInspection(w io.Writer, report subtitle.Report, duration, at float64) error {
	if duration <= 0 {
		duration = lastEnd(report.Entries)
	}

	view := timeline.Build([]timeline.TrackInput{{Name: "track", Entries: report.Entries}}, duration, at)
	if !view.Ready {
		fmt.Fprintf(w, "%d entries, duration unknown; pass --duration to lay them out\n", len(report.Entries))
		return nil
	}

	rows := make([][]string, 0, len(report.Entries))
	for _, item := range view.Lanes[0].Items {
		left, width := "-", "-"
		if !item.Placement.Malformed {
			left = fmt.Sprintf("%.2f", item.Placement.LeftPercent)
			width = fmt.Sprintf("%.2f", item.Placement.WidthPercent)
		}
		active := ""
		if item.Active {
			active = "*"
		}
		rows = append(rows, []string{
			item.Entry.ID,
			item.Entry.StartTime,
			item.Entry.EndTime,
			left,
			width,
			active,
			item.Entry.Text,
		})
	}

	fmt.Fprintf(w, "%d entries over %s, cursor at %s\n", len(rows), view.DurationLabel, view.CurrentLabel)
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Start", "End", "Left %", "Width %", "Active", "Text"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	marks := make([]string, 0, len(view.Ticks))
	for _, t := range view.Ticks {
		marks = append(marks, t.Label)
	}
	fmt.Fprintf(w, "Ruler every %gs: %s\n", view.Interval, strings.Join(marks, " "))

	for _, rej := range report.Rejected {
		fmt.Fprintf(w, "Dropped block %d: %s\n", rej.Block, rej.Reason)
	}
	if len(report.Malformed) > 0 {
		fmt.Fprintf(w, "Malformed timestamps: %s\n", strings.Join(report.Malformed, ", "))
	}
	return nil
}
