package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvidlabs/giflet/internal/gif"
	"github.com/corvidlabs/giflet/internal/logger"
	"github.com/corvidlabs/giflet/internal/source"
	"github.com/corvidlabs/giflet/pkg/util/format"
)

// AppName is the CLI's program name, as printed in help text.
const AppName = "giflet"

// Execute builds and runs the root command against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          AppName + " <path>",
		Short:        AppName + " - a GIF87a/89a decoder",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runDecode,
	}

	rootCmd.Flags().String("log-level", "INFO", "minimum log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.Flags().BoolP("quiet", "q", false, "suppress all log output")
	rootCmd.Flags().Bool("strict", false, "reject streams using reserved disposal values")

	return rootCmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	path := args[0]

	quiet, _ := cmd.Flags().GetBool("quiet")
	strict, _ := cmd.Flags().GetBool("strict")
	logLevel, _ := cmd.Flags().GetString("log-level")

	var log *logger.Logger
	if !quiet {
		log = logger.New(os.Stderr, logger.ParseLevel(logLevel))
	}

	f, err := source.OpenFile(path)
	if err != nil {
		return fmt.Errorf("giflet: %w", err)
	}
	defer f.Close()

	result, err := gif.Decode(f.Bytes(), gif.Options{
		Strict: strict,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("giflet: decoding %q: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d frame(s), loop=%s, delay=%dcs, %s read\n",
		path, result.Width, result.Height, len(result.Frames),
		formatLoopCount(result.LoopCount), totalDelay(result.Frames), format.FormatBytes(int64(result.BytesConsumed)))

	return nil
}

func totalDelay(frames []gif.ComposedFrame) int {
	var total int
	for _, f := range frames {
		total += int(f.DelayCS)
	}
	return total
}

func formatLoopCount(n int) string {
	switch {
	case n < 0:
		return "none"
	case n == 0:
		return "infinite"
	default:
		return fmt.Sprintf("%d", n)
	}
}
