package audio_capture

import (
	"testing"

	"github.com/gordonklaus/portaudio"
)

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Fatal("expected error for nil config")
		}
	})

	t.Run("invalid parameters are rejected before touching the device", func(t *testing.T) {
		cases := []*Config{
			{SampleRate: 0, Channels: 1, ChunkSize: 1024, DeviceIndex: DefaultDevice},
			{SampleRate: 16000, Channels: 0, ChunkSize: 1024, DeviceIndex: DefaultDevice},
			{SampleRate: 16000, Channels: 1, ChunkSize: 0, DeviceIndex: DefaultDevice},
			{SampleRate: 16000, Channels: 1, ChunkSize: 1024, DeviceIndex: -2},
		}
		for _, cfg := range cases {
			if _, err := New(cfg); err == nil {
				t.Errorf("expected error for %+v", cfg)
			}
			if active.Load() {
				t.Fatalf("session guard left set after rejecting %+v", cfg)
			}
		}
	})

	t.Run("second session is refused while one is active", func(t *testing.T) {
		active.Store(true)
		defer active.Store(false)

		_, err := New(&Config{SampleRate: 16000, Channels: 1, ChunkSize: 1024, DeviceIndex: DefaultDevice})
		if err != ErrSessionActive {
			t.Fatalf("expected ErrSessionActive, got %v", err)
		}
	})
}

func TestDownmix(t *testing.T) {
	t.Run("mono is copied", func(t *testing.T) {
		in := []int16{1, 2, 3}
		out := Downmix(in, 1)
		in[0] = 100
		if out[0] != 1 || len(out) != 3 {
			t.Errorf("expected an independent copy, got %v", out)
		}
	})

	t.Run("stereo is averaged", func(t *testing.T) {
		out := Downmix([]int16{100, 200, -50, 50, 32767, 32767}, 2)
		expected := []int16{150, 0, 32767}
		if len(out) != len(expected) {
			t.Fatalf("expected %d samples, got %d", len(expected), len(out))
		}
		for i := range expected {
			if out[i] != expected[i] {
				t.Errorf("sample %d: expected %d, got %d", i, expected[i], out[i])
			}
		}
	})
}

func TestPickDevice(t *testing.T) {
	devices := []*portaudio.DeviceInfo{
		{Index: 0, Name: "built-in"},
		{Index: 3, Name: "usb mic"},
	}

	d, err := pickDevice(devices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "usb mic" {
		t.Errorf("expected usb mic, got %s", d.Name)
	}

	if _, err := pickDevice(devices, 7); err == nil {
		t.Error("expected error for unknown index")
	}
}

func TestConvertDevices(t *testing.T) {
	infos := []*portaudio.DeviceInfo{
		{Index: 1, Name: "mic", MaxInputChannels: 2, DefaultSampleRate: 44100, HostApi: &portaudio.HostApiInfo{Name: "ALSA"}},
		{Index: 2, Name: "speaker", MaxOutputChannels: 2},
	}
	devices := convertDevices(infos, infos[0], nil)
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].HostAPI != "ALSA" || devices[0].MaxInputChannels != 2 {
		t.Errorf("unexpected first device %+v", devices[0])
	}
	if !devices[0].DefaultInput || devices[0].DefaultOutput {
		t.Errorf("expected only the default input flag on the first device, got %+v", devices[0])
	}
	if devices[1].DefaultInput || devices[1].DefaultOutput {
		t.Errorf("expected no default flags on the second device, got %+v", devices[1])
	}
	if devices[1].HostAPI != "" {
		t.Errorf("expected empty host api, got %q", devices[1].HostAPI)
	}
}
