package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"splicer/internal/api"
	"splicer/internal/config"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/media/ffprobe"
	"splicer/internal/pipeline"
	"splicer/internal/services"
	"splicer/internal/timecode"
)

type jobOptions struct {
	output    string
	overwrite bool
	jsonOut   bool
}

func (o *jobOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file (defaults to the job's output name in the current directory)")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "Replace the output file if it exists")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Print the finished job as JSON")
}

// specFunc derives the transcode spec once the base clip is loaded.
type specFunc func(cfg *config.Config, base *jobs.MediaHandle) (pipeline.TranscodeSpec, error)

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var quality, resolution string
	var opts jobOptions

	cmd := &cobra.Command{
		Use:   "compress BASE",
		Short: "Re-encode a clip at a preset quality and resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := func(cfg *config.Config, _ *jobs.MediaHandle) (pipeline.TranscodeSpec, error) {
				return pipeline.ParseSpec(pipeline.KindCompress, 0, quality, resolution,
					cfg.Defaults.Quality, cfg.Defaults.Resolution)
			}
			return runJob(cmd, ctx, pipeline.KindCompress, args, spec, opts)
		},
	}
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Quality preset: high, medium, low (or factor 28, 30, 32)")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "", "Output size, e.g. 1280x720 or 720p")
	opts.register(cmd)
	return cmd
}

func newStitchCommand(ctx *commandContext) *cobra.Command {
	var at, scrub float64
	var opts jobOptions

	cmd := &cobra.Command{
		Use:   "stitch BASE TARGET",
		Short: "Insert TARGET into BASE at a cut point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			useScrub := cmd.Flags().Changed("scrub")
			spec := func(_ *config.Config, base *jobs.MediaHandle) (pipeline.TranscodeSpec, error) {
				cut := at
				if useScrub {
					if scrub < 0 || scrub > timecode.ScrubMax {
						return pipeline.TranscodeSpec{}, services.Wrap(services.ErrInvalidInput, "stitch", "scrub",
							fmt.Sprintf("scrub %.2f outside [0, %d]", scrub, timecode.ScrubMax), nil)
					}
					cut = timecode.ToSeconds(scrub, base.Duration)
				}
				return pipeline.ParseSpec(pipeline.KindStitch, cut, "", "", "", "")
			}
			return runJob(cmd, ctx, pipeline.KindStitch, args, spec, opts)
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Cut point in seconds")
	cmd.Flags().Float64Var(&scrub, "scrub", 0, "Cut point as a position in [0, 100] of the base clip")
	cmd.MarkFlagsMutuallyExclusive("at", "scrub")
	cmd.MarkFlagsOneRequired("at", "scrub")
	opts.register(cmd)
	return cmd
}

func runJob(cmd *cobra.Command, cctx *commandContext, kind pipeline.Kind, paths []string, specFor specFunc, opts jobOptions) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	reporter := newProgressReporter(stderr, isTerminal(stderr) && !opts.jsonOut)
	logger, err := cctx.newLogger(reporter)
	if err != nil {
		return err
	}

	output, err := resolveOutput(opts.output, kind, opts.overwrite)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base, err := loadInput(ctx, cfg, paths[0], logger)
	if err != nil {
		return err
	}
	var target *jobs.MediaHandle
	if len(paths) > 1 {
		if target, err = loadInput(ctx, cfg, paths[1], logger); err != nil {
			return err
		}
	}
	spec, err := specFor(cfg, base)
	if err != nil {
		return err
	}

	eng := newEngine(cfg, logger)
	defer eng.Close()
	manager := newManager(cfg, eng, logger)

	updates, unsubscribe := manager.Subscribe(32)
	defer unsubscribe()

	job, err := manager.Submit(ctx, jobs.Request{Kind: kind, Spec: spec, Base: base, Target: target})
	if err != nil {
		return err
	}
	final, err := follow(ctx, updates, job.ID, reporter)
	reporter.Finish()
	cleanupCtx := context.WithoutCancel(ctx)
	if err != nil {
		if resetErr := manager.Reset(cleanupCtx); resetErr != nil {
			logger.Warn("reset after interrupt failed", logging.Error(resetErr))
		}
		fmt.Fprintln(stderr, "Interrupted; job discarded")
		return context.Canceled
	}

	if final.State == jobs.StateFailed {
		if opts.jsonOut {
			_ = writeJSON(cmd, api.FromJob(final))
		}
		message := "unknown error"
		step := 0
		if final.Error != nil {
			message = final.Error.Message
			step = final.Error.Step
		}
		if step == 0 {
			return fmt.Errorf("%s job failed before its first step: %s", kind, message)
		}
		return fmt.Errorf("%s job failed at step %d: %s", kind, step, message)
	}

	data, info, err := manager.Result(cleanupCtx)
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := manager.Reset(cleanupCtx); err != nil {
		logger.Warn("workspace cleanup failed", logging.Error(err))
	}

	if opts.jsonOut {
		dto := api.FromJob(final)
		if dto.Result != nil {
			dto.Result.DownloadURL = output
		}
		return writeJSON(cmd, dto)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues("Job complete", [][2]string{
		{"Job", final.ID},
		{"Kind", string(final.Kind)},
		{"Steps", fmt.Sprintf("%d", final.StepCount())},
		{"Elapsed", final.Elapsed(time.Now()).Round(time.Millisecond).String()},
		{"Output", output},
		{"Size", fmt.Sprintf("%d bytes", info.Size)},
	}))
	return nil
}

// follow renders snapshots of job id until it is terminal or ctx ends.
func follow(ctx context.Context, updates <-chan jobs.Job, id string, reporter *progressReporter) (jobs.Job, error) {
	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return jobs.Job{}, errors.New("job updates closed")
			}
			if job.ID != id {
				continue
			}
			reporter.Update(job)
			if job.State.Terminal() {
				return job, nil
			}
		case <-ctx.Done():
			return jobs.Job{}, ctx.Err()
		}
	}
}

func loadInput(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) (*jobs.MediaHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "input", "read", path, err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "input", "read", path+" is empty", nil)
	}
	duration := 0.0
	probed, err := ffprobe.Inspect(ctx, cfg.Engine.FFprobeBinary, path)
	if err != nil {
		logging.WarnWithContext(logger, "input probe failed", "input_probe_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe so clip durations are known"),
		)
	} else {
		duration = probed.DurationSeconds()
	}
	logger.Debug("input loaded",
		logging.String("path", path),
		logging.Int("size", len(data)),
		logging.Float64("duration", duration),
	)
	return &jobs.MediaHandle{Name: filepath.Base(path), Data: data, Duration: duration}, nil
}

func resolveOutput(requested string, kind pipeline.Kind, overwrite bool) (string, error) {
	output := strings.TrimSpace(requested)
	if output == "" {
		output = pipeline.OutputName(kind)
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if !overwrite {
		if _, err := os.Stat(abs); err == nil {
			return "", fmt.Errorf("output %s already exists (use --overwrite to replace it)", abs)
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("check output path: %w", err)
		}
	}
	return abs, nil
}
