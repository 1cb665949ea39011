// Package pipeline drives a job from probing through encoding.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"vidsqueeze/internal/encoder"
	"vidsqueeze/internal/logging"
	"vidsqueeze/internal/model"
	"vidsqueeze/internal/plan"
	"vidsqueeze/internal/probe"
	"vidsqueeze/internal/progress"
	"vidsqueeze/internal/util"
	"vidsqueeze/internal/util/format"
)

// Service runs a single job from probe through encode to finalize.
// Everything is sequential and blocking; cancellation happens through the
// context handed to RunJob.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	opts        model.Options
	runner      util.CmdRunner
	reporter    progress.Reporter
	log         zerolog.Logger
	jobID       string
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) { s.ffmpegPath = p }
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) { s.ffprobePath = p }
}

// WithOptions sets the options used for planning and execution.
func WithOptions(o model.Options) Option {
	return func(s *Service) { s.opts = o }
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) { s.runner = r }
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) { s.reporter = rp }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithJobID sets the job ID associated with reporter events.
func WithJobID(id string) Option {
	return func(s *Service) { s.jobID = id }
}

// NewService constructs a new Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	return s
}

// Plan contains the computed plan for a job (for dry-run/introspection).
type Plan struct {
	OutputPath       string
	Enc              model.EncodeOptions
	VideoBitrateKbps int // 0 in audio-only mode
	AudioBitrateKbps int
	Source           model.SourceInfo

	FFmpegPath  string
	FFprobePath string
}

// Result is the outcome of RunJob.
type Result struct {
	InputPath      string
	Planned        bool
	Plan           *Plan
	Output         *model.Output
	Source         model.SourceInfo
	Overshot       bool
	OvershootRatio float64
}

// RunJob executes the full pipeline for the configured input.
// It never prints; when a Reporter is present, it emits progress and a
// final Result event.
func (s *Service) RunJob(ctx context.Context) (Result, error) {
	res := Result{InputPath: s.opts.InputPath}

	if s.ffprobePath == "" {
		return res, fmt.Errorf("ffprobe path is required")
	}
	if !s.opts.DryRun && s.ffmpegPath == "" {
		return res, fmt.Errorf("ffmpeg path is required")
	}

	// Step 1: probe the source.
	s.emitStage(progress.StageProbing, "Probing input")
	src, err := probe.Probe(ctx, s.opts.InputPath, probe.Options{
		FFprobePath: s.ffprobePath,
		Verbose:     s.opts.Verbose,
		Runner:      s.runner,
	})
	if err != nil {
		return res, err
	}
	res.Source = src
	s.logSource(src)

	// Step 2: plan the bitrate budget.
	s.emitStage(progress.StagePlanning, "Planning bitrate")
	pl, err := s.plan(src)
	if err != nil {
		return res, err
	}
	s.logPlan(pl)

	if s.opts.DryRun {
		res.Planned = true
		res.Plan = pl
		s.emitPlanned(pl.OutputPath)
		return res, nil
	}

	// Step 3: encode.
	encOpts := encoder.Options{
		FFmpegPath:        s.ffmpegPath,
		Verbose:           s.opts.Verbose,
		OutputPath:        pl.OutputPath,
		Reporter:          s.reporter,
		JobID:             s.jobID,
		Runner:            s.runner,
		KeepOutputOnError: s.opts.KeepOutputOnError,
	}
	var out model.Output
	if s.opts.Mode == model.ModeExtractAudio {
		out, err = encoder.ExtractAudio(ctx, src, pl.Enc, encOpts)
	} else {
		out, err = encoder.Compress(ctx, src, pl.Enc, encOpts)
	}
	if err != nil {
		return res, err
	}

	// Step 4: finalize.
	res.Output = &out
	res.Overshot, res.OvershootRatio = s.checkOvershoot(out.Bytes)
	if res.Overshot {
		s.log.Warn().
			Float64("ratio", res.OvershootRatio).
			Float64("target_mb", s.opts.TargetSizeMB).
			Float64("actual_mb", format.MB(out.Bytes)).
			Msg("output exceeds target size by more than 10%")
	}
	s.emitSaved(out, res.Overshot, res.OvershootRatio)

	return res, nil
}

// plan resolves the encode options and output path for the configured mode.
func (s *Service) plan(src model.SourceInfo) (*Plan, error) {
	pl := &Plan{
		Source:      src,
		OutputPath:  s.opts.OutputPath,
		FFmpegPath:  s.ffmpegPath,
		FFprobePath: s.ffprobePath,
	}

	if s.opts.Mode == model.ModeExtractAudio {
		params, err := plan.AudioExtractParams(s.opts.AudioBitrateKbps)
		if err != nil {
			return nil, err
		}
		pl.Enc = model.EncodeOptions{
			AudioOnly:        true,
			AudioBitrateKbps: params.BitrateKbps,
			AudioCodec:       params.Codec,
		}
		pl.AudioBitrateKbps = params.BitrateKbps
		return pl, nil
	}

	audioKbps := plan.CompressAudioKbps(s.opts.AudioBitrateKbps)
	videoKbps, err := plan.VideoBitrateKbps(src.DurationSec, s.opts.TargetSizeMB, audioKbps)
	if err != nil {
		return nil, err
	}
	pl.Enc = model.EncodeOptions{
		VideoBitrateKbps: videoKbps,
		AudioBitrateKbps: audioKbps,
		VideoCodec:       "libx264",
		AudioCodec:       "aac",
	}
	pl.VideoBitrateKbps = videoKbps
	pl.AudioBitrateKbps = audioKbps
	return pl, nil
}

// logSource mirrors the analysis summary the tool prints in verbose mode.
func (s *Service) logSource(src model.SourceInfo) {
	mins := int(src.DurationSec) / 60
	secs := int(src.DurationSec) % 60
	s.log.Debug().
		Str("input", src.Path).
		Str("duration", fmt.Sprintf("%dm%02ds", mins, secs)).
		Str("size", format.HumanizeBytes(src.SizeBytes)).
		Int("width", src.Width).
		Int("height", src.Height).
		Msg("probed source")
}

func (s *Service) logPlan(pl *Plan) {
	ev := s.log.Debug().Int("audio_kbps", pl.AudioBitrateKbps)
	if !pl.Enc.AudioOnly {
		ev = ev.Int("video_kbps", pl.VideoBitrateKbps).Float64("target_mb", s.opts.TargetSizeMB)
	}
	ev.Str("output", pl.OutputPath).Msg("planned encode")
}

func (s *Service) emitStage(stage progress.Stage, msg string) {
	if s.reporter == nil {
		return
	}
	s.reporter.Update(progress.Update{
		JobID:   s.jobID,
		Stage:   stage,
		Percent: -1,
		Message: msg,
	})
}

// emitPlanned sends a final "planned" update and reporter result for TUI.
func (s *Service) emitPlanned(outPath string) {
	if s.reporter == nil {
		return
	}
	name := filepath.Base(outPath)
	s.reporter.Update(progress.Update{
		JobID:   s.jobID,
		Stage:   progress.StageCompleted,
		Percent: 100,
		Message: fmt.Sprintf("Planned: %s (dry-run)", name),
	})
	s.reporter.Result(progress.Result{
		JobID:      s.jobID,
		OutputPath: outPath,
	})
}

// emitSaved sends a final "saved" update and reporter result for TUI.
func (s *Service) emitSaved(out model.Output, overshot bool, ratio float64) {
	if s.reporter == nil {
		return
	}
	name := filepath.Base(out.OutputPath)
	size := format.HumanizeBytes(out.Bytes)
	s.reporter.Update(progress.Update{
		JobID:   s.jobID,
		Stage:   progress.StageCompleted,
		Percent: 100,
		Message: fmt.Sprintf("Saved: %s (%s)", name, size),
	})
	s.reporter.Result(progress.Result{
		JobID:          s.jobID,
		OutputPath:     out.OutputPath,
		Bytes:          out.Bytes,
		Overshot:       overshot,
		OvershootRatio: ratio,
	})
}

// checkOvershoot determines whether the output exceeds the target by >10%.
// The planner floors the bitrate, so staying within this tolerance is the
// documented size contract for compression mode.
func (s *Service) checkOvershoot(outBytes int64) (bool, float64) {
	if s.opts.Mode != model.ModeCompress || s.opts.TargetSizeMB <= 0 {
		return false, 0
	}
	maxBytes := s.opts.TargetSizeMB * 1024 * 1024
	ratio := float64(outBytes) / maxBytes
	return ratio > 1.10, ratio
}
