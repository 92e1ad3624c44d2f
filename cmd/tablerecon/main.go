package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tablerecon",
	Short: "Table reconciliation engine",
	Long: `tablerecon reconciles operational table extracts against their warehouse
copies: it joins both sides on the configured primary key, flags duplicates
and one-side-only rows, measures per-column agreement, and writes a report
plus row exports for every table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Console format at debug level so the failure is readable even
		// when the run never got far enough to build the real logger
		l, logErr := logging.New("debug", "console")
		if logErr == nil {
			l.Error("Command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
