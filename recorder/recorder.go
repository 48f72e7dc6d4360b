// Package recorder stores new reference recordings as numbered wav files
// next to the existing ones.
package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"

	"speech-command-detection/template_store"
)

type Interface interface {
	// NextIndex is one more than the highest integer index recorded for
	// label, or 1 when there is none.
	NextIndex(label string) (int, error)

	// Save writes samples as <label>_<NextIndex>.wav and returns the path.
	Save(label string, samples []int16) (string, error)
}

type Config struct {
	FileSys    afero.Fs
	Dir        string
	SampleRate int
	Logger     *slog.Logger
}

type recorderImpl struct {
	fileSys    afero.Fs
	dir        string
	sampleRate int
	logger     *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &recorderImpl{
		fileSys:    cfg.FileSys,
		dir:        dir,
		sampleRate: cfg.SampleRate,
		logger:     logger,
	}, nil
}

// ValidateLabel rejects labels that cannot round-trip through a reference
// file name or would escape the directory.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("label is empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("label %q must not contain path separators", label)
	}
	return nil
}

func (r *recorderImpl) NextIndex(label string) (int, error) {
	if err := ValidateLabel(label); err != nil {
		return 0, err
	}

	matches, err := afero.Glob(r.fileSys, filepath.Join(r.dir, template_store.ReferencePattern))
	if err != nil {
		return 0, fmt.Errorf("recorder: list references: %w", err)
	}

	highest := 0
	for _, path := range matches {
		name, index, err := template_store.ParseName(path)
		if err != nil || name != label {
			continue
		}
		n, err := strconv.Atoi(index)
		if err != nil || n < 0 {
			r.logger.Debug("ignoring reference with non-numeric index", "path", path)
			continue
		}
		highest = max(highest, n)
	}

	return highest + 1, nil
}

func (r *recorderImpl) Save(label string, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("recorder: nothing to save")
	}

	index, err := r.NextIndex(label)
	if err != nil {
		return "", err
	}

	if err := r.fileSys.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("recorder: create %s: %w", r.dir, err)
	}

	path := filepath.Join(r.dir, template_store.FileName(label, index))

	f, err := r.fileSys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("recorder: create %s: %w", path, err)
	}

	w, err := wave.NewWriter(wave.WriterParam{
		Out:           f,
		Channel:       1,
		SampleRate:    r.sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		f.Close()
		return "", fmt.Errorf("recorder: wave writer: %w", err)
	}

	if _, err := w.WriteSample16(samples); err != nil {
		w.Close()
		return "", fmt.Errorf("recorder: write %s: %w", path, err)
	}

	// Close flushes the header and data and closes f.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("recorder: close %s: %w", path, err)
	}

	r.logger.Info("saved recording", "path", path, "samples", len(samples))

	return path, nil
}
