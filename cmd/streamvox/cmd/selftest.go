package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/streamvox/internal/audio"
	"github.com/msto63/streamvox/internal/config"
	"github.com/msto63/streamvox/internal/encoder"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check audio devices and encoder availability without starting capture",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelftest()
	},
}

func runSelftest() error {
	fmt.Println("streamvox selftest")

	devices, err := audio.ListInputDevices()
	if err != nil {
		fmt.Println("  audio devices: FAILED:", err)
	} else if len(devices) == 0 {
		fmt.Println("  audio devices: none found")
	} else {
		fmt.Printf("  audio devices: %d found\n", len(devices))
		for _, d := range devices {
			marker := ""
			if d.IsDefault {
				marker = " (default)"
			}
			fmt.Printf("    - %s%s, %d ch, %.0f Hz\n", d.Name, marker, d.MaxInputChannels, d.DefaultSampleRate)
		}
	}

	cfg, err := config.Load(config.LookupEnv)
	if err != nil {
		fmt.Println("  config: FAILED:", err)
		return err
	}
	fmt.Println("  config: OK")

	if enc, err := encoder.New(cfg.ModelPath, false); err != nil {
		fmt.Println("  encoder: FAILED:", err)
	} else {
		result, err := enc.Load(cfg.ModelPath)
		if err != nil {
			fmt.Println("  encoder load: FAILED:", err)
		} else {
			fmt.Printf("  encoder: OK (input_len=%d dim=%d vocab=%d, native=%v)\n",
				result.InputLen, result.Dim, result.VocabSize, encoder.NativeAvailable())
		}
		enc.Close()
	}

	return nil
}
