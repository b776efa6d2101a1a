// Package preview produces thumbnails and intrinsic metadata (dimensions,
// duration, capture time) for stored media files. Image work goes through
// the imaging library; video work shells out to ffprobe/ffmpeg.
package preview

import (
	"sync"
	"time"
)

// Processor holds preview settings and a process-lifetime probe cache.
type Processor struct {
	ThumbMaxSize int
	ThumbQuality int
	FFmpegPath   string
	FFprobePath  string
	ProbeTimeout time.Duration

	// probeCache caches video probe results (including failures) by
	// absolute path for the lifetime of the process.
	probeCache sync.Map
}

func NewProcessor(thumbMaxSize, thumbQuality int, ffmpegPath, ffprobePath string, probeTimeout time.Duration) *Processor {
	return &Processor{
		ThumbMaxSize: thumbMaxSize,
		ThumbQuality: thumbQuality,
		FFmpegPath:   ffmpegPath,
		FFprobePath:  ffprobePath,
		ProbeTimeout: probeTimeout,
	}
}

// VideoProbe is the result of an ffprobe run.
type VideoProbe struct {
	Width    int
	Height   int
	Duration int // seconds, rounded
}
