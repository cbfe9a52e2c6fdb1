package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"framecast/internal/config"
	"framecast/internal/ffmpeg"
	"framecast/internal/fileutil"
	"framecast/internal/logging"
	"framecast/internal/runner"
)

// Engine renders clips and assembles the final video using the configured
// encoder settings. All invocations go through the process runner; the
// engine interprets exit codes.
type Engine struct {
	cfg    *config.Config
	runner *runner.Runner
	logger *slog.Logger
}

// NewEngine constructs a render engine.
func NewEngine(cfg *config.Config, run *runner.Runner, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		runner: run,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

func (e *Engine) video() *ffmpeg.Video {
	return &ffmpeg.Video{
		Codec:     "libx264",
		Preset:    e.cfg.Encoder.Preset,
		CRF:       e.cfg.Encoder.CRF,
		FrameRate: e.cfg.Encoder.FrameRate,
	}
}

// videoNoRate mirrors the concat fallback and final mux, which inherit the
// clips' frame rate instead of forcing one.
func (e *Engine) videoNoRate() *ffmpeg.Video {
	v := e.video()
	v.FrameRate = 0
	return v
}

func (e *Engine) run(ctx context.Context, op string, cmd ffmpeg.Command) error {
	logger := logging.WithContext(ctx, e.logger)
	argv := cmd.Args()
	logger.Debug("encoder invocation", logging.String("op", op), logging.String("argv", strings.Join(argv, " ")))

	result, err := e.runner.Run(ctx, argv, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.ExitCode != 0 {
		return &EncoderError{Op: op, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return nil
}

// RenderScene encodes one still image into a fixed-resolution, fixed-rate
// clip lasting exactly duration seconds.
func (e *Engine) RenderScene(ctx context.Context, imagePath string, duration float64, out string) error {
	return e.run(ctx, "render scene", ffmpeg.Command{
		Binary:   e.cfg.Encoder.Binary,
		Inputs:   []ffmpeg.Input{{Path: imagePath, Loop: true}},
		Duration: duration,
		Filter:   ffmpeg.ScaleFilter(e.cfg.Encoder.Width, e.cfg.Encoder.Height),
		Video:    e.video(),
		Output:   out,
	})
}

// Assemble concatenates the ordered clips into out. A single clip is copied
// byte for byte to avoid a pointless re-encode. Multiple clips go through
// the concat demuxer with stream copy, falling back to a full re-encode when
// the copy fails on incompatible stream parameters.
func (e *Engine) Assemble(ctx context.Context, clips []string, out string) error {
	logger := logging.WithContext(ctx, e.logger)

	switch len(clips) {
	case 0:
		return ErrNoClips
	case 1:
		if err := fileutil.CopyFile(clips[0], out); err != nil {
			return fmt.Errorf("copy single clip: %w", err)
		}
		return nil
	}

	playlist := filepath.Join(filepath.Dir(out), "clips.txt")
	if err := writePlaylist(playlist, clips); err != nil {
		return err
	}

	copyErr := e.run(ctx, "concat clips", ffmpeg.Command{
		Binary:  e.cfg.Encoder.Binary,
		Inputs:  []ffmpeg.Input{{Path: playlist, Concat: true}},
		CopyAll: true,
		Output:  out,
	})
	if copyErr == nil {
		return nil
	}
	if _, ok := AsEncoderError(copyErr); !ok {
		return copyErr
	}

	logger.Warn("stream-copy concat failed, re-encoding", logging.Error(copyErr))
	return e.run(ctx, "concat clips re-encode", ffmpeg.Command{
		Binary: e.cfg.Encoder.Binary,
		Inputs: []ffmpeg.Input{{Path: playlist, Concat: true}},
		Video:  e.videoNoRate(),
		Output: out,
	})
}

// Compose muxes the assembled video with an optional audio track and an
// optional burned-in caption into out. audioPath and caption may be empty.
func (e *Engine) Compose(ctx context.Context, videoPath, audioPath, caption, out string) error {
	var filter string
	if caption != "" {
		filter = ffmpeg.DrawtextFilter(e.cfg.Encoder.FontFile, caption)
	}

	cmd := ffmpeg.Command{
		Binary: e.cfg.Encoder.Binary,
		Inputs: []ffmpeg.Input{{Path: videoPath}},
		Filter: filter,
		Video:  e.videoNoRate(),
		Output: out,
	}
	if audioPath != "" {
		cmd.Inputs = append(cmd.Inputs, ffmpeg.Input{Path: audioPath})
		cmd.Maps = []string{"0:v:0", "1:a:0"}
		cmd.Shortest = true
	}
	return e.run(ctx, "final compose", cmd)
}

// writePlaylist emits a concat-demuxer playlist: one file directive per
// clip, in scene order.
func writePlaylist(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&b, "file '%s'\n", clip)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}
