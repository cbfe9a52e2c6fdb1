package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"framecast/internal/config"
	"framecast/internal/fetch"
	"framecast/internal/fileutil"
	"framecast/internal/jobstore"
	"framecast/internal/logging"
	"framecast/internal/media/ffprobe"
	"framecast/internal/render"
)

// Progress checkpoints for the status document. Per-clip progress advances
// linearly between progressRendering and progressRendered.
const (
	progressDownloading = 5
	progressRendering   = 15
	progressRendered    = 55
	progressMixing      = 70
	progressDone        = 100
)

// Orchestrator drives one job through the rendering state machine. Exactly
// one Process call runs per job; it is the sole writer of that job's status
// document.
type Orchestrator struct {
	cfg     *config.Config
	store   jobstore.Store
	fetcher *fetch.Client
	engine  *render.Engine
	logger  *slog.Logger
}

// NewOrchestrator wires the orchestrator with its collaborators.
func NewOrchestrator(cfg *config.Config, store jobstore.Store, fetcher *fetch.Client, engine *render.Engine, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		engine:  engine,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// jobState tracks the last progress value written so a failure freezes the
// document at the stage it reached.
type jobState struct {
	job      *Job
	progress int
}

// Process runs the job to a terminal status. Every failure, including a
// panic anywhere in the pipeline, terminates this job only; the serving
// process keeps running.
func (o *Orchestrator) Process(ctx context.Context, job *Job) {
	ctx = logging.WithJob(ctx, job.ID)
	logger := logging.WithContext(ctx, o.logger)
	state := &jobState{job: job}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", logging.Any("panic", r))
			o.fail(state, fmt.Sprintf("%v", r))
		}
	}()

	if err := o.process(ctx, state, logger); err != nil {
		logger.Error("job failed", logging.Error(err))
		o.fail(state, statusMessage(err))
		return
	}
	logger.Info("job done", logging.String("video_url", job.ResultPath()))
}

func (o *Orchestrator) process(ctx context.Context, state *jobState, logger *slog.Logger) error {
	job := state.job

	// Stage 1: resolve remote sources.
	if err := o.advance(ctx, state, jobstore.StatusDownloading, progressDownloading); err != nil {
		return err
	}
	sources := job.Request.SceneSources()
	logger.Info("downloading sources", logging.Int("scenes", len(sources)))

	type clipSource struct {
		path     string
		duration float64
	}
	downloaded := make([]clipSource, 0, len(sources))
	for _, src := range sources {
		dest := filepath.Join(job.Dir, fmt.Sprintf("img_%d.jpg", src.Index))
		if err := o.fetcher.Fetch(ctx, src.ImageURL, dest); err != nil {
			return newFailure(ErrFetch, "image", err.Error(), err)
		}
		downloaded = append(downloaded, clipSource{path: dest, duration: src.Duration})
	}

	audioPath := ""
	if url, ok := job.Request.AudioURL(); ok {
		dest := filepath.Join(job.Dir, "audio.mp3")
		if err := o.fetcher.Fetch(ctx, url, dest); err != nil {
			logger.Warn("audio fetch failed, continuing without audio", logging.Error(err))
		} else {
			audioPath = dest
		}
	}

	// Stage 2: render one clip per scene.
	if err := o.advance(ctx, state, jobstore.StatusRendering, progressRendering); err != nil {
		return err
	}
	clips := make([]string, 0, len(downloaded))
	for idx, src := range downloaded {
		out := filepath.Join(job.Dir, fmt.Sprintf("clip_%d.mp4", idx))
		if err := o.engine.RenderScene(ctx, src.path, src.duration, out); err != nil {
			return o.encoderFailure("render clip", err, o.cfg.Pipeline.RenderErrorExcerpt)
		}
		clips = append(clips, out)

		done := idx + 1
		span := progressRendered - progressRendering
		progress := progressRendering + int(float64(done)/float64(len(downloaded))*float64(span))
		if err := o.advance(ctx, state, jobstore.StatusRendering, progress); err != nil {
			return err
		}
	}

	// Stage 3: concatenate clips.
	assembled := filepath.Join(job.Dir, "final_noaudio.mp4")
	if err := o.engine.Assemble(ctx, clips, assembled); err != nil {
		if errors.Is(err, render.ErrNoClips) {
			return newFailure(ErrNoScenes, "assemble", render.ErrNoClips.Error(), err)
		}
		return o.encoderFailure("assemble", err, o.cfg.Pipeline.RenderErrorExcerpt)
	}

	// Stage 4: mux audio and burn the caption.
	if err := o.advance(ctx, state, jobstore.StatusMixing, progressMixing); err != nil {
		return err
	}
	caption, _ := job.Request.CaptionText()
	final := filepath.Join(job.Dir, job.ID+".mp4")
	if err := o.engine.Compose(ctx, assembled, audioPath, caption, final); err != nil {
		return o.encoderFailure("compose", err, o.cfg.Pipeline.MixErrorExcerpt)
	}

	// Stage 5: publish.
	published := filepath.Join(o.cfg.Paths.PublicDir, job.ID+".mp4")
	if err := fileutil.CopyFile(final, published); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	o.validateArtifact(ctx, logger, published)

	doc := jobstore.Document{
		JobID:    job.ID,
		Status:   jobstore.StatusDone,
		Progress: jobstore.Progress(progressDone),
		VideoURL: job.ResultPath(),
	}
	state.progress = progressDone
	if err := o.store.Put(ctx, doc); err != nil {
		return fmt.Errorf("persist done status: %w", err)
	}
	return nil
}

// encoderFailure converts an engine error into a job failure whose visible
// message is a bounded excerpt of the captured diagnostics.
func (o *Orchestrator) encoderFailure(stage string, err error, limit int) error {
	if encErr, ok := render.AsEncoderError(err); ok {
		return newFailure(ErrEncoder, stage, excerpt(encErr.Diagnostic(), limit), err)
	}
	return newFailure(ErrEncoder, stage, excerpt(err.Error(), limit), err)
}

// validateArtifact probes the published file and logs when it looks broken.
// Probe problems never fail the job.
func (o *Orchestrator) validateArtifact(ctx context.Context, logger *slog.Logger, path string) {
	if !o.cfg.Encoder.ValidateOutput {
		return
	}
	result, err := ffprobe.Inspect(ctx, o.cfg.Encoder.FFprobeBinary, path)
	if err != nil {
		logger.Warn("artifact probe failed", logging.Error(err))
		return
	}
	if result.VideoStreamCount() == 0 {
		logger.Warn("published artifact has no video stream", logging.String("path", path))
	}
	if result.DurationSeconds() <= 0 {
		logger.Warn("published artifact reports no duration", logging.String("path", path))
	}
}

func (o *Orchestrator) advance(ctx context.Context, state *jobState, status jobstore.Status, progress int) error {
	if progress < state.progress {
		progress = state.progress
	}
	doc := jobstore.Document{
		JobID:    state.job.ID,
		Status:   status,
		Progress: jobstore.Progress(progress),
	}
	if err := o.store.Put(ctx, doc); err != nil {
		return fmt.Errorf("persist %s status: %w", status, err)
	}
	state.progress = progress
	return nil
}

// fail writes the terminal failed document with progress frozen at the last
// successful stage value. It uses a fresh context so a canceled job still
// records its failure.
func (o *Orchestrator) fail(state *jobState, message string) {
	doc := jobstore.Document{
		JobID:    state.job.ID,
		Status:   jobstore.StatusFailed,
		Progress: jobstore.Progress(state.progress),
		Error:    message,
	}
	if err := o.store.Put(context.Background(), doc); err != nil {
		o.logger.Error("persist failed status", logging.String(logging.FieldJobID, state.job.ID), logging.Error(err))
	}
}
