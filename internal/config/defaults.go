package config

const (
	defaultConfigPath     = "~/.config/splicer/config.toml"
	projectConfigName     = "splicer.toml"
	defaultWorkDir        = "~/.local/share/splicer/work"
	defaultLogDir         = "~/.local/share/splicer/logs"
	defaultAPIBind        = "127.0.0.1:7490"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultVideoCodec     = "libx264"
	defaultX264Preset     = "ultrafast"
	defaultMinFreeMiB     = 1024
	defaultQuality        = "low"
	defaultResolution     = "1280x720"
	defaultMaxUploadMiB   = 4096
	defaultShutdownWait   = 10
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	ntfyTopicEnvironment  = "SPLICER_NTFY_TOPIC"
	logLevelEnvironment   = "SPLICER_LOG_LEVEL"
	workDirEnvironment    = "SPLICER_WORK_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Engine: Engine{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			X264Preset:    defaultX264Preset,
			MinFreeMiB:    defaultMinFreeMiB,
		},
		Defaults: Defaults{
			Quality:    defaultQuality,
			Resolution: defaultResolution,
		},
		Server: Server{
			MaxUploadMiB:    defaultMaxUploadMiB,
			ShutdownTimeout: defaultShutdownWait,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobSucceeded:   true,
			JobFailed:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
