package template_store

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion changes whenever the artifact layout does.
const cacheVersion = 1

type cacheArtifact struct {
	Version int      `msgpack:"version"`
	Library *Library `msgpack:"library"`
}

func readCache(fs afero.Fs, path string) (*Library, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var artifact cacheArtifact
	if err := msgpack.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}

	if artifact.Version != cacheVersion {
		return nil, fmt.Errorf("cache %s has version %d, want %d", path, artifact.Version, cacheVersion)
	}

	if artifact.Library == nil {
		return nil, fmt.Errorf("cache %s holds no library", path)
	}

	return artifact.Library, nil
}

// writeCache replaces the artifact through a temporary file so a crash never
// leaves a half-written cache behind.
func writeCache(fs afero.Fs, path string, lib *Library) error {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(&cacheArtifact{Version: cacheVersion, Library: lib}); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", tmp, err)
	}

	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache %s: %w", path, err)
	}

	return nil
}
