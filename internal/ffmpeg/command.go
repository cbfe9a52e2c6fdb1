package ffmpeg

import (
	"strconv"
	"strings"
)

// Input describes one input file and the flags that precede its -i.
type Input struct {
	Path string
	// Loop repeats a single still frame (-loop 1).
	Loop bool
	// Concat reads the path as a concat-demuxer playlist (-f concat -safe 0).
	Concat bool
}

// Video holds the encode parameters shared by every re-encoding invocation.
type Video struct {
	Codec     string
	Preset    string
	CRF       int
	FrameRate int
}

// Command is a typed ffmpeg invocation. Exactly one of Video or CopyAll
// should be set for commands that produce video output.
type Command struct {
	Binary string
	Inputs []Input
	// Duration bounds the output length in seconds (-t); zero omits it.
	Duration float64
	// Filter is a -vf filtergraph expression; empty omits it.
	Filter string
	Video  *Video
	// CopyAll stream-copies every input stream (-c copy).
	CopyAll bool
	// Maps selects input streams explicitly (-map entries, in order).
	Maps []string
	// Shortest trims the output to the shortest input stream.
	Shortest bool
	Output   string
}

// Args translates the command into the flat argument vector handed to the
// process runner. -y is always present: job working directories are owned by
// a single orchestrator, so overwrites are intentional.
func (c Command) Args() []string {
	binary := strings.TrimSpace(c.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := []string{binary, "-y"}
	for _, input := range c.Inputs {
		if input.Loop {
			args = append(args, "-loop", "1")
		}
		if input.Concat {
			args = append(args, "-f", "concat", "-safe", "0")
		}
		args = append(args, "-i", input.Path)
	}
	if c.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(c.Duration, 'f', -1, 64))
	}
	if c.Filter != "" {
		args = append(args, "-vf", c.Filter)
	}
	if c.CopyAll {
		args = append(args, "-c", "copy")
	} else if c.Video != nil {
		args = append(args, "-c:v", c.Video.Codec, "-preset", c.Video.Preset, "-crf", strconv.Itoa(c.Video.CRF))
		if c.Video.FrameRate > 0 {
			args = append(args, "-r", strconv.Itoa(c.Video.FrameRate))
		}
	}
	for _, m := range c.Maps {
		args = append(args, "-map", m)
	}
	if c.Shortest {
		args = append(args, "-shortest")
	}
	return append(args, c.Output)
}
