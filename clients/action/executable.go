package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const DefaultSuffix = ".sh"

type executableImpl struct {
	dir     string
	suffix  string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

type ExecutableConfig struct {
	// Dir holds one executable per label.
	Dir string

	// Suffix is appended to the label to form the file name. Defaults to
	// DefaultSuffix; set it to "none" for bare names.
	Suffix string

	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecutable runs <Dir>/<label><Suffix> with no arguments for every
// action and waits for it to exit.
func NewExecutable(cfg *ExecutableConfig) (Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	suffix := cfg.Suffix
	switch suffix {
	case "":
		suffix = DefaultSuffix
	case "none":
		suffix = ""
	}

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &executableImpl{
		dir:     dir,
		suffix:  suffix,
		timeout: cfg.Timeout,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
	}, nil
}

// Path returns the executable that would run for label.
func (e *executableImpl) Path(label string) (string, error) {
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return "", fmt.Errorf("action: label %q is not a valid executable name", label)
	}

	path := filepath.Join(e.dir, label+e.suffix)
	if !strings.ContainsRune(path, filepath.Separator) {
		// exec.Command only searches PATH for bare names.
		path = "." + string(filepath.Separator) + path
	}

	return path, nil
}

func (e *executableImpl) Dispatch(ctx context.Context, action Action) error {
	path, err := e.Path(action.Label)
	if err != nil {
		return err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Info("running action", "label", action.Label, "path", path)

	cmd := exec.CommandContext(ctx, path)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("action: run %s: %w", path, err)
	}

	return nil
}
