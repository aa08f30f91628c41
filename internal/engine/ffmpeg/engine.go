package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"splicer/internal/engine"
	"splicer/internal/logging"
	"splicer/internal/services"
)

var commandContext = exec.CommandContext

const lockFileName = ".splicer.lock"

// Option configures the engine.
type Option func(*Engine)

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(binary) != "" {
			e.binary = strings.TrimSpace(binary)
		}
	}
}

// WithVideoCodec overrides the transcode codec (default libx264).
func WithVideoCodec(codec string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(codec) != "" {
			e.videoCodec = strings.TrimSpace(codec)
		}
	}
}

// WithPreset overrides the encoder speed preset (default ultrafast).
func WithPreset(preset string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(preset) != "" {
			e.preset = strings.TrimSpace(preset)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine runs ffmpeg against files in a private workspace directory.
type Engine struct {
	binary     string
	videoCodec string
	preset     string
	workDir    string
	logger     *slog.Logger

	mu     sync.Mutex
	loaded bool
	lock   *flock.Flock

	// slot serialises Exec; the engine runs one operation at a time.
	slot chan struct{}
}

// New constructs an engine rooted at workDir. Nothing touches the disk until
// Load.
func New(workDir string, opts ...Option) *Engine {
	e := &Engine{
		binary:     "ffmpeg",
		videoCodec: "libx264",
		preset:     "ultrafast",
		workDir:    workDir,
		logger:     logging.NewNop(),
		slot:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WorkDir returns the namespace directory.
func (e *Engine) WorkDir() string {
	return e.workDir
}

// Load verifies the ffmpeg binary, prepares the workspace and takes the
// workspace lock. Subsequent calls are no-ops once Load has succeeded.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return nil
	}
	if strings.TrimSpace(e.workDir) == "" {
		return services.Wrap(services.ErrEngineLoad, "engine", "load", "workspace directory not configured", nil)
	}

	cmd := commandContext(ctx, e.binary, "-hide_banner", "-version") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrEngineLoad, "engine", "load",
			fmt.Sprintf("%s -version failed: %s", e.binary, strings.TrimSpace(string(output))), err)
	}
	version := firstLine(string(output))

	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return services.Wrap(services.ErrEngineLoad, "engine", "load", "create workspace", err)
	}
	lock := flock.New(filepath.Join(e.workDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrEngineLoad, "engine", "load", "acquire workspace lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrEngineLoad, "engine", "load",
			fmt.Sprintf("workspace %s is in use by another process", e.workDir), nil)
	}
	e.lock = lock
	e.loaded = true
	e.logger.Info("engine loaded",
		logging.String("binary", e.binary),
		logging.String("version", version),
		logging.String("work_dir", e.workDir),
	)
	return nil
}

// Close releases the workspace lock. The engine can be loaded again.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil
	}
	e.loaded = false
	if e.lock == nil {
		return nil
	}
	err := e.lock.Unlock()
	e.lock = nil
	return err
}

// WriteArtifact stores data under name, replacing any previous file.
func (e *Engine) WriteArtifact(_ context.Context, name string, data []byte) error {
	path, err := e.resolve(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(e.workDir, ".write-*")
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ReadArtifact returns the bytes stored under name.
func (e *Engine) ReadArtifact(_ context.Context, name string) ([]byte, error) {
	path, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "engine", "read", fmt.Sprintf("artifact %q not found", name), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// DeleteArtifact removes name. Missing files are ignored.
func (e *Engine) DeleteArtifact(_ context.Context, name string) error {
	path, err := e.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

func (e *Engine) requireLoaded() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return services.Wrap(services.ErrEngineLoad, "engine", "", "engine not loaded", nil)
	}
	return nil
}

func (e *Engine) resolve(name string) (string, error) {
	if err := e.requireLoaded(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(e.workDir, name), nil
}

// validateName keeps artifact names inside the workspace and away from the
// engine's own dot files.
func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return services.Wrap(services.ErrInvalidInput, "engine", "artifact", "artifact name is required", nil)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return services.Wrap(services.ErrInvalidInput, "engine", "artifact", fmt.Sprintf("artifact name %q contains a path separator", name), nil)
	case strings.HasPrefix(name, "."):
		return services.Wrap(services.ErrInvalidInput, "engine", "artifact", fmt.Sprintf("artifact name %q is reserved", name), nil)
	}
	return nil
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}

var _ engine.Engine = (*Engine)(nil)
