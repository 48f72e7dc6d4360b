package commands

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"

	"speech-command-detection/audio_capture"
	"speech-command-detection/config"
	"speech-command-detection/listener"
)

func TestPrompter(t *testing.T) {
	t.Run("line trims input", func(t *testing.T) {
		var out bytes.Buffer
		p := newPrompter(strings.NewReader("  lights_on \n"), &out)

		got, err := p.line("Enter a name")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "lights_on" {
			t.Errorf("expected lights_on, got %q", got)
		}
		if !strings.Contains(out.String(), "Enter a name") {
			t.Errorf("expected the question to be printed, got %q", out.String())
		}
	})

	t.Run("confirm uses the default on empty input", func(t *testing.T) {
		p := newPrompter(strings.NewReader("\n\n"), io.Discard)

		yes, err := p.confirm("ok?", true)
		if err != nil || !yes {
			t.Errorf("expected true, got %v (%v)", yes, err)
		}

		no, err := p.confirm("ok?", false)
		if err != nil || no {
			t.Errorf("expected false, got %v (%v)", no, err)
		}
	})

	t.Run("confirm asks again on unknown answers", func(t *testing.T) {
		var out bytes.Buffer
		p := newPrompter(strings.NewReader("maybe\nNO\n"), &out)

		got, err := p.confirm("ok?", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Error("expected false")
		}
		if !strings.Contains(out.String(), "Please answer y or n.") {
			t.Errorf("expected a retry hint, got %q", out.String())
		}
	})

	t.Run("closed input is EOF", func(t *testing.T) {
		p := newPrompter(strings.NewReader(""), io.Discard)

		if _, err := p.line("name"); err != io.EOF {
			t.Errorf("expected io.EOF, got %v", err)
		}
		if err := ignoreEOF(io.EOF); err != nil {
			t.Errorf("expected ignoreEOF to swallow EOF, got %v", err)
		}
	})
}

func TestOverflowPolicy(t *testing.T) {
	if overflowPolicy(config.OverflowBlock) != listener.OverflowBlock {
		t.Error("expected block")
	}
	if overflowPolicy(config.OverflowDropOldest) != listener.OverflowDropOldest {
		t.Error("expected drop oldest")
	}
	if overflowPolicy("") != listener.OverflowDropOldest {
		t.Error("expected drop oldest by default")
	}
}

func TestNewDispatcher(t *testing.T) {
	c := config.Default()

	c.Actions.Mode = config.ActionNone
	d, err := newDispatcher(&c)
	if err != nil || d != nil {
		t.Errorf("expected no dispatcher for mode none, got %v (%v)", d, err)
	}

	c.Actions.Mode = config.ActionExecutable
	if d, err := newDispatcher(&c); err != nil || d == nil {
		t.Errorf("expected executable dispatcher, got %v (%v)", d, err)
	}

	c.Actions.Mode = config.ActionWebhook
	c.Actions.WebhookURL = "http://127.0.0.1:1/hook"
	if d, err := newDispatcher(&c); err != nil || d == nil {
		t.Errorf("expected webhook dispatcher, got %v (%v)", d, err)
	}

	c.Actions.Mode = "carrier-pigeon"
	if _, err := newDispatcher(&c); err == nil {
		t.Error("expected error for unknown mode")
	}
}

type frameQueue struct {
	frames [][]int16
}

func (q *frameQueue) ReadFrame(ctx context.Context) ([]int16, error) {
	if len(q.frames) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, nil
}

func withSource(t *testing.T, source listener.FrameSource) {
	t.Helper()
	orig := openSource
	openSource = func(*config.Config) (listener.FrameSource, func() error, error) {
		return source, func() error { return nil }, nil
	}
	t.Cleanup(func() { openSource = orig })
}

func TestCaptureOne(t *testing.T) {
	c := config.Default()
	c.Audio.WarmupFrames = 0
	c.VAD = config.VADConfig{RMSThreshold: 0.1, RedemptionFrames: 1, MinSpeechFrames: 1, PrepadFrames: 0}
	c.Pipeline.Overflow = config.OverflowBlock

	loud := []int16{20000, -20000}
	quiet := []int16{0, 0}

	withSource(t, &frameQueue{frames: [][]int16{quiet, loud, loud, loud, quiet, quiet, loud, loud, loud, quiet, quiet}})

	samples, err := captureOne(context.Background(), &c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// three active frames and two trailing quiet frames
	if len(samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(samples))
	}
	if samples[0] != loud[0] {
		t.Errorf("expected the utterance to start with speech, got %v", samples[:2])
	}
}

func TestCaptureOne_Cancelled(t *testing.T) {
	c := config.Default()
	c.Audio.WarmupFrames = 0

	withSource(t, &frameQueue{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	samples, err := captureOne(ctx, &c)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if samples != nil {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func writeTone(t *testing.T, fs afero.Fs, path string, freq, amplitude float64) {
	t.Helper()

	f, err := fs.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := wave.NewWriter(wave.WriterParam{Out: f, Channel: 1, SampleRate: 16000, BitsPerSample: 16})
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]int16, 4000)
	for i := range samples {
		samples[i] = int16(amplitude * 32767 * math.Sin(2*math.Pi*freq*float64(i)/16000))
	}

	if _, err := w.WriteSample16(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReferenceLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/refs", 0o755); err != nil {
		t.Fatal(err)
	}

	writeTone(t, fs, "/refs/fan_1.wav", 440, 0.5)
	writeTone(t, fs, "/refs/fan_2.wav", 440, 0.5)
	if err := afero.WriteFile(fs, "/refs/broken_1.wav", []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	mean, count, err := referenceLevel(fs, "/refs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 readable references, got %d", count)
	}

	// RMS of a sine is amplitude / sqrt(2)
	if expected := 0.5 / math.Sqrt2; math.Abs(mean-expected) > 0.01 {
		t.Errorf("expected mean RMS near %.4f, got %.4f", expected, mean)
	}
}

func TestPrintDevices(t *testing.T) {
	devices := []audio_capture.Device{
		{Index: 0, Name: "built-in mic", HostAPI: "ALSA", MaxInputChannels: 1, DefaultSampleRate: 44100, DefaultInput: true},
		{Index: 1, Name: "speakers", HostAPI: "ALSA", MaxOutputChannels: 2, DefaultSampleRate: 48000, DefaultOutput: true},
		{Index: 2, Name: "headset", HostAPI: "ALSA", MaxInputChannels: 1, MaxOutputChannels: 2, DefaultSampleRate: 16000},
	}

	var out bytes.Buffer
	printDevices(&out, devices)

	text := out.String()
	inputs, outputs, ok := strings.Cut(text, "Output devices:")
	if !ok {
		t.Fatalf("missing output section in %q", text)
	}
	if !strings.Contains(inputs, " * ") || !strings.Contains(inputs, "built-in mic") || strings.Contains(inputs, "speakers") {
		t.Errorf("unexpected input section %q", inputs)
	}
	if !strings.Contains(outputs, "speakers") || !strings.Contains(outputs, "headset") || strings.Contains(outputs, "built-in mic") {
		t.Errorf("unexpected output section %q", outputs)
	}

	if err := checkDevice(devices, 1, true); err == nil {
		t.Error("expected speakers to be rejected as input")
	}
	if err := checkDevice(devices, 2, false); err != nil {
		t.Errorf("expected headset to be accepted as output, got %v", err)
	}
	if err := checkDevice(devices, 9, true); err == nil {
		t.Error("expected unknown index to be rejected")
	}
	if err := checkDevice(devices, config.DefaultDevice, true); err != nil {
		t.Errorf("expected default device to be accepted, got %v", err)
	}
}

func TestTemplatesList(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if err := memFs.MkdirAll("/refs", 0o755); err != nil {
		t.Fatal(err)
	}
	writeTone(t, memFs, "/refs/lights_on_1.wav", 440, 0.3)
	writeTone(t, memFs, "/refs/lights_on_2.wav", 460, 0.3)
	writeTone(t, memFs, "/refs/fan_1.wav", 1200, 0.3)

	origFs := fileSys
	fileSys = memFs
	t.Cleanup(func() { fileSys = origFs })

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("log_level: error\ntemplates:\n  dir: /refs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func() string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"--config", configFile, "templates", "list"})
		if err := Execute(context.Background()); err != nil {
			t.Fatalf("templates list: %v", err)
		}
		return out.String()
	}

	first := run()
	if !strings.Contains(first, "3 templates, 2 labels") || !strings.Contains(first, "(rebuilt)") {
		t.Errorf("unexpected first listing %q", first)
	}
	if !strings.Contains(first, "lights_on") || !strings.Contains(first, "fan") {
		t.Errorf("expected both labels in %q", first)
	}

	second := run()
	if !strings.Contains(second, "(from cache)") {
		t.Errorf("expected the second listing to come from the cache, got %q", second)
	}
}
