// Package template_store builds and caches the library of labeled reference
// templates.
//
// References are wav files named <label>_<index>.wav in one directory. The
// library is persisted next to them together with a snapshot of every
// reference's modification time. On load the snapshot is recomputed; any
// difference at all (a file added, removed or touched) discards the cache and
// rebuilds every template from scratch.
package template_store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"speech-command-detection/feature_extraction"
	"speech-command-detection/observe"
)

// DefaultCacheFile is the artifact name used when Config.CacheFile is empty.
const DefaultCacheFile = "model"

type Config struct {
	FileSys   afero.Fs
	Dir       string
	CacheFile string
	Extractor feature_extraction.Interface
	Logger    *slog.Logger
	Metrics   *observe.Metrics
}

type storeImpl struct {
	fileSys   afero.Fs
	dir       string
	cacheFile string
	extractor feature_extraction.Interface
	logger    *slog.Logger
	metrics   *observe.Metrics

	// mu serializes rebuilds; libraries handed out are never mutated.
	mu sync.Mutex
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor is nil")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	cacheFile := cfg.CacheFile
	if cacheFile == "" {
		cacheFile = filepath.Join(dir, DefaultCacheFile)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	return &storeImpl{
		fileSys:   cfg.FileSys,
		dir:       dir,
		cacheFile: cacheFile,
		extractor: cfg.Extractor,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

func (s *storeImpl) Snapshot() (Snapshot, error) {
	paths, err := afero.Glob(s.fileSys, filepath.Join(s.dir, ReferencePattern))
	if err != nil {
		return nil, fmt.Errorf("template_store: list references: %w", err)
	}

	snap := make(Snapshot, len(paths))

	for _, p := range paths {
		info, err := s.fileSys.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("template_store: stat %s: %w", p, err)
		}

		if info.IsDir() {
			continue
		}

		snap[p] = info.ModTime().UnixNano()
	}

	return snap, nil
}

func (s *storeImpl) Load(ctx context.Context) (*Library, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := readCache(s.fileSys, s.cacheFile)
	if err != nil {
		reason := "corrupt"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "missing"
		} else {
			s.logger.Warn("discarding unreadable template cache", "path", s.cacheFile, "err", err)
		}

		lib, err := s.rebuild(ctx, reason)

		return lib, true, err
	}

	current, err := s.Snapshot()
	if err != nil {
		return nil, false, err
	}

	if !cached.Snapshot.Equal(current) {
		s.logger.Info("reference recordings changed, rebuilding templates",
			"cached_files", len(cached.Snapshot),
			"current_files", len(current),
		)

		lib, err := s.rebuild(ctx, "stale")

		return lib, true, err
	}

	s.logger.Debug("template cache is current", "path", s.cacheFile, "templates", cached.Len())

	return cached, false, nil
}

func (s *storeImpl) Build(ctx context.Context) (*Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rebuild(ctx, "forced")
}

// rebuild must be called with mu held.
func (s *storeImpl) rebuild(ctx context.Context, reason string) (*Library, error) {
	s.metrics.TemplateRebuilds.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(snap))
	for p := range snap {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	lib := &Library{
		Snapshot:  snap,
		Templates: make(map[string][]Template),
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label, _, err := ParseName(p)
		if err != nil {
			s.logger.Warn("skipping reference recording", "path", p, "err", err)
			continue
		}

		features, err := s.extract(p)
		if err != nil {
			return nil, fmt.Errorf("template_store: %w", err)
		}

		lib.Templates[label] = append(lib.Templates[label], Template{
			Label:    label,
			Source:   p,
			Features: features,
		})
		lib.FileNames = append(lib.FileNames, p)
	}

	for label := range lib.Templates {
		lib.Labels = append(lib.Labels, label)
	}

	sort.Strings(lib.Labels)

	if err := writeCache(s.fileSys, s.cacheFile, lib); err != nil {
		return nil, fmt.Errorf("template_store: %w", err)
	}

	s.logger.Info("rebuilt templates",
		"reason", reason,
		"templates", lib.Len(),
		"labels", lib.Labels,
	)

	return lib, nil
}

func (s *storeImpl) extract(path string) (feature_extraction.Matrix, error) {
	buf, err := ReadWAV(s.fileSys, path)
	if err != nil {
		return nil, err
	}

	samples, err := feature_extraction.Resample(MonoSamples(buf), buf.Format.SampleRate, s.extractor.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	features, err := s.extractor.Extract(samples)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return features, nil
}
