package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"speech-command-detection/audio_capture"
	"speech-command-detection/config"
)

var (
	selectInput  int
	selectOutput int
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices and optionally store the selection",
	Long: `Lists input and output devices with the host defaults marked.

--select-input and --select-output write the chosen device index (-1 for the
host default) into the configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := audio_capture.Devices()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printDevices(out, devices)

		inChanged := cmd.Flags().Changed("select-input")
		outChanged := cmd.Flags().Changed("select-output")
		if !inChanged && !outChanged {
			return nil
		}

		if inChanged {
			if err := checkDevice(devices, selectInput, true); err != nil {
				return err
			}
			cfg.Audio.InputDeviceIndex = selectInput
		}
		if outChanged {
			if err := checkDevice(devices, selectOutput, false); err != nil {
				return err
			}
			cfg.Audio.OutputDeviceIndex = selectOutput
		}

		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nSaved input device %d and output device %d to %s\n",
			cfg.Audio.InputDeviceIndex, cfg.Audio.OutputDeviceIndex, configPath)

		return nil
	},
}

func init() {
	devicesCmd.Flags().IntVar(&selectInput, "select-input", config.DefaultDevice, "input device index to store in the config")
	devicesCmd.Flags().IntVar(&selectOutput, "select-output", config.DefaultDevice, "output device index to store in the config")
}

func printDevices(out io.Writer, devices []audio_capture.Device) {
	fmt.Fprintln(out, titleStyle.Render("Input devices:"))
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			printDevice(out, d, d.DefaultInput)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Output devices:"))
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			printDevice(out, d, d.DefaultOutput)
		}
	}
}

func printDevice(out io.Writer, d audio_capture.Device, isDefault bool) {
	line := fmt.Sprintf("%3d  %s", d.Index, d.Name)
	details := hintStyle.Render(fmt.Sprintf("(%s, %.0f Hz)", d.HostAPI, d.DefaultSampleRate))

	if isDefault {
		fmt.Fprintf(out, " * %s %s\n", labelStyle.Render(line), details)
		return
	}
	fmt.Fprintf(out, "   %s %s\n", line, details)
}

func checkDevice(devices []audio_capture.Device, index int, input bool) error {
	if index == config.DefaultDevice {
		return nil
	}
	for _, d := range devices {
		if d.Index != index {
			continue
		}
		if input && d.MaxInputChannels < 1 {
			return fmt.Errorf("device %d (%s) has no input channels", index, d.Name)
		}
		if !input && d.MaxOutputChannels < 1 {
			return fmt.Errorf("device %d (%s) has no output channels", index, d.Name)
		}
		return nil
	}
	return fmt.Errorf("no audio device with index %d", index)
}
