package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// glog registers -v, -logtostderr and friends on the Go flag set.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "s57topo",
	Short: "Decode S-57 ENC exchange files into a topology map",
	Long: `s57topo reads IHO S-57 electronic navigational chart cells (.000 files)
and reports what they contain: dataset metadata, the field descriptions of
the DDR, decoded nodes and features, and a GeoJSON export of the features.

Coordinates are decoded to degrees. Nothing is projected or rendered.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file with decode and load options")
	rootCmd.PersistentFlags().Bool("no-index", false, "Skip building the spatial index")
	rootCmd.PersistentFlags().Bool("no-validate", false, "Accept coordinates outside ±90/±180")
	rootCmd.PersistentFlags().Int("max-record-length", 0, "Reject records longer than this many bytes (0: no limit)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(ddrCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(geojsonCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("s57topo %s (commit %s, built %s)\n", version, commit, date)
	},
}
