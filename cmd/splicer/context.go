package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"splicer/internal/config"
	"splicer/internal/engine/ffmpeg"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/notifications"
	"splicer/internal/preflight"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the process logger writing console or JSON records to w
// and a JSON copy into the log directory.
func (c *commandContext) newLogger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var level string
	if c.logLevelFlag != nil {
		level = *c.logLevelFlag
	}
	logger, err := logging.NewFromConfig(cfg, w, level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// newEngine builds the ffmpeg engine for the configured workspace.
func newEngine(cfg *config.Config, logger *slog.Logger) *ffmpeg.Engine {
	return ffmpeg.New(cfg.Paths.WorkDir,
		ffmpeg.WithBinary(cfg.Engine.FFmpegBinary),
		ffmpeg.WithVideoCodec(cfg.Engine.VideoCodec),
		ffmpeg.WithPreset(cfg.Engine.X264Preset),
		ffmpeg.WithLogger(logging.NewComponentLogger(logger, "engine")),
	)
}

func newManager(cfg *config.Config, eng *ffmpeg.Engine, logger *slog.Logger) *jobs.Manager {
	return jobs.NewManager(eng,
		jobs.WithLogger(logger),
		jobs.WithNotifier(notifications.NewService(cfg)),
		jobs.WithWorkspaceCheck(preflight.WorkspaceSpaceCheck(cfg)),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
