// Package media reads container metadata from uploaded videos with ffprobe.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrProbeUnavailable means ffprobe is not installed.
var ErrProbeUnavailable = errors.New("ffprobe not found in PATH")

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"` // video, audio, subtitle
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Info is what the review editor shows about a video.
type Info struct {
	Duration   float64 `json:"duration"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
}

// Probe runs ffprobe on path.
func Probe(ctx context.Context, path string) (*Info, error) {
	bin, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, ErrProbeUnavailable
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (*Info, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := &Info{}
	if result.Format.Duration != "" {
		d, err := strconv.ParseFloat(result.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("ffprobe duration %q: %w", result.Format.Duration, err)
		}
		info.Duration = d
	}

	for _, s := range result.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}
	return info, nil
}
