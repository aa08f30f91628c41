package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"splicer/internal/pipeline"
)

var x264Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"server.max_upload_mib":         c.Server.MaxUploadMiB,
		"server.shutdown_timeout":       c.Server.ShutdownTimeout,
	}); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.MinFreeMiB < 0 {
		return errors.New("engine.min_free_mib must be >= 0")
	}
	if c.Engine.VideoCodec == "libx264" {
		for _, preset := range x264Presets {
			if preset == c.Engine.X264Preset {
				return nil
			}
		}
		return fmt.Errorf("engine.x264_preset %q is not an x264 preset", c.Engine.X264Preset)
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, err := pipeline.ParseQuality(c.Defaults.Quality); err != nil {
		return fmt.Errorf("defaults.quality: %w", err)
	}
	if _, err := pipeline.ParseResolution(c.Defaults.Resolution); err != nil {
		return fmt.Errorf("defaults.resolution: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
