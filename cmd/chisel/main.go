package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/provide-io/chisel/pkg"
)

const version = "0.1.0"

var (
	productPath string
	logLevel    string
	rootCmd     *cobra.Command
)

// versionText reports the release and, when the binary was built from a
// checkout, the commit time recorded by the toolchain.
func versionText() string {
	built := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				built = setting.Value
			}
		}
	}
	return fmt.Sprintf("chisel %s\nBuilt: %s\n", version, built)
}

func init() {
	rootCmd = &cobra.Command{
		Use:           "chisel",
		Short:         "Estimate space wasted by unused jobs and packages in a product file",
		Long:          `Inspect a .pivotal product bundle and report how many bytes could be saved by dropping compiled packages and jobs its deployment metadata never uses.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          inspect,
	}

	rootCmd.Flags().StringVar(&productPath, "product-path", "", "Path to your .pivotal file (required)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	// cobra answers --version before required flags are validated
	rootCmd.Flags().BoolP("version", "V", false, "Show version information")
	rootCmd.SetVersionTemplate(versionText())

	if err := rootCmd.MarkFlagRequired("product-path"); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func inspect(cmd *cobra.Command, args []string) error {
	_, err := pkg.InspectProduct(productPath, cmd.OutOrStdout(), logLevel)
	return err
}
