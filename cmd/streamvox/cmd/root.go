package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/streamvox/internal/apperr"
)

var rootCmd = &cobra.Command{
	Use:   "streamvox",
	Short: "Continuous low-latency speech-to-text transcription",
	Long: `streamvox captures microphone audio, detects speech activity, and
streams transcription results to a broadcast endpoint.

Run with no subcommand to start transcribing using the default device
and configuration; see the transcribe subcommand for flags.`,
}

// Execute runs the command tree and maps a returned apperr.Error to the
// process exit code its category assigns; non-apperr errors exit 1.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var appErr *apperr.Error
		if ae, ok := err.(*apperr.Error); ok {
			appErr = ae
		}
		fmt.Fprintln(os.Stderr, "streamvox:", err)
		if appErr != nil {
			if code := appErr.Category.ExitCode(); code != 0 {
				return code
			}
			return 1
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(selftestCmd)
	rootCmd.AddCommand(downloadModelsCmd)
}
