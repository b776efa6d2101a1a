package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeVideo extracts dimensions and duration via ffprobe. Results,
// including failures, are cached by path for the process lifetime so
// repeated listings do not re-probe the same file.
func (p *Processor) ProbeVideo(ctx context.Context, path string) (VideoProbe, error) {
	if cached, ok := p.probeCache.Load(path); ok {
		entry := cached.(probeEntry)
		return entry.probe, entry.err
	}

	probe, err := p.runFFprobe(ctx, path)
	// Do not poison the cache with cancellations; only settled outcomes stick.
	if ctx.Err() == nil {
		p.probeCache.Store(path, probeEntry{probe: probe, err: err})
	}
	return probe, err
}

type probeEntry struct {
	probe VideoProbe
	err   error
}

func (p *Processor) runFFprobe(ctx context.Context, path string) (VideoProbe, error) {
	ctx, cancel := context.WithTimeout(ctx, p.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return VideoProbe{}, fmt.Errorf("ffprobe failed: %w - %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return VideoProbe{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var probe VideoProbe
	for _, stream := range out.Streams {
		if stream.CodecType == "video" {
			probe.Width = stream.Width
			probe.Height = stream.Height
			break
		}
	}
	if seconds, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		probe.Duration = int(math.Round(seconds))
	}
	if probe.Width == 0 && probe.Height == 0 {
		return probe, fmt.Errorf("no video stream in %s", path)
	}
	return probe, nil
}

// VideoThumbnail grabs a frame one second in and writes it to dst as JPEG,
// scaled down to the configured bounding box.
func (p *Processor) VideoThumbnail(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, p.ProbeTimeout)
	defer cancel()

	scale := fmt.Sprintf("scale='min(%d,iw)':-2", p.ThumbMaxSize)
	cmd := exec.CommandContext(ctx, p.FFmpegPath,
		"-y",
		"-ss", "00:00:01.000",
		"-i", src,
		"-vframes", "1",
		"-vf", scale,
		"-q:v", "4",
		dst,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail failed: %w - %s", err, stderr.String())
	}
	return nil
}
