package recorder

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"speech-command-detection/template_store"
)

const testDir = "/refs"

func newTestRecorder(t *testing.T, fs afero.Fs) Interface {
	t.Helper()

	r, err := New(&Config{
		FileSys:    fs,
		Dir:        testDir,
		SampleRate: 16000,
		Logger:     slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return r
}

func touch(t *testing.T, fs afero.Fs, name string) {
	t.Helper()
	if err := afero.WriteFile(fs, filepath.Join(testDir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := New(&Config{SampleRate: 16000}); err == nil {
		t.Error("expected error for missing filesystem")
	}
	if _, err := New(&Config{FileSys: afero.NewMemMapFs()}); err == nil {
		t.Error("expected error for missing sample rate")
	}
}

func TestNextIndex(t *testing.T) {
	t.Run("starts at one", func(t *testing.T) {
		r := newTestRecorder(t, afero.NewMemMapFs())

		n, err := r.NextIndex("fan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1, got %d", n)
		}
	})

	t.Run("continues after the highest index", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		touch(t, fs, "fan_1.wav")
		touch(t, fs, "fan_7.wav")
		touch(t, fs, "fan_3.wav")
		touch(t, fs, "fan_take.wav")
		touch(t, fs, "fan_on_9.wav")
		touch(t, fs, "heater_12.wav")

		r := newTestRecorder(t, fs)

		n, err := r.NextIndex("fan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 8 {
			t.Errorf("expected 8, got %d", n)
		}

		n, err = r.NextIndex("fan_on")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 10 {
			t.Errorf("expected 10, got %d", n)
		}
	})

	t.Run("rejects unusable labels", func(t *testing.T) {
		r := newTestRecorder(t, afero.NewMemMapFs())

		for _, label := range []string{"", "  ", "../fan", `a\b`, ".."} {
			if _, err := r.NextIndex(label); err == nil {
				t.Errorf("expected error for label %q", label)
			}
		}
	})
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "lights_on_2.wav")

	r := newTestRecorder(t, fs)

	samples := []int16{0, 1000, -1000, 32767, -32768, 5}

	path, err := r.Save("lights_on", samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expected := filepath.Join(testDir, "lights_on_3.wav"); path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}

	buf, err := template_store.ReadWAV(fs, path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if buf.Format.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", buf.Format.SampleRate)
	}

	if buf.Format.NumChannels != 1 {
		t.Errorf("expected 1 channel, got %d", buf.Format.NumChannels)
	}

	if len(buf.Data) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(buf.Data))
	}

	for i, s := range samples {
		if buf.Data[i] != int(s) {
			t.Errorf("sample %d: expected %d, got %d", i, s, buf.Data[i])
		}
	}

	next, err := r.NextIndex("lights_on")
	if err != nil {
		t.Fatal(err)
	}
	if next != 4 {
		t.Errorf("expected next index 4, got %d", next)
	}
}

func TestSave_EmptyRecording(t *testing.T) {
	r := newTestRecorder(t, afero.NewMemMapFs())

	if _, err := r.Save("fan", nil); err == nil {
		t.Fatal("expected error for empty recording")
	}
}
