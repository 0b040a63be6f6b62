package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/s57topo/pkg/s57"
)

var infoCmd = &cobra.Command{
	Use:   "info <cell.000>",
	Short: "Show dataset metadata, record counts and warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var ddrCmd = &cobra.Command{
	Use:   "ddr <cell.000>",
	Short: "List the field descriptions of the DDR",
	Args:  cobra.ExactArgs(1),
	RunE:  runDDR,
}

var nodesCmd = &cobra.Command{
	Use:   "nodes <cell.000>",
	Short: "List decoded nodes, optionally inside a bounding box",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodes,
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson <cell.000>",
	Short: "Export features as a GeoJSON FeatureCollection",
	Args:  cobra.ExactArgs(1),
	RunE:  runGeoJSON,
}

var indexCmd = &cobra.Command{
	Use:   "index <directory>",
	Short: "Index every cell below a directory and query it",
	Long: `Decode every .000 file below a directory and list the charts that
intersect --bbox, best scale first. Without --bbox every chart is listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	nodesCmd.Flags().String("bbox", "", "Bounding box minLon,minLat,maxLon,maxLat in degrees")
	nodesCmd.Flags().Bool("features", false, "List features intersecting the box instead of nodes")

	geojsonCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	indexCmd.Flags().String("bbox", "", "Bounding box minLon,minLat,maxLon,maxLat in degrees")
	indexCmd.Flags().Int("workers", 0, "Decoder goroutines (0: one per CPU, 1: serial)")
	indexCmd.Flags().Int("min-scale", 0, "Keep charts with scale denominator <= this")
	indexCmd.Flags().Int("max-scale", 0, "Keep charts with scale denominator >= this")
}

func decodeArg(cmd *cobra.Command, path string) (*s57.Chart, error) {
	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("decoding %s", path)
	chart, err := s57.DecodeFile(path, opts.Decode)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return chart, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	chart, err := decodeArg(cmd, args[0])
	if err != nil {
		return err
	}
	writeInfo(cmd.OutOrStdout(), chart)
	return nil
}

func writeInfo(out io.Writer, chart *s57.Chart) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Dataset:\t%s\n", chart.DatasetName())
	fmt.Fprintf(w, "Edition:\t%s (update %s, %s)\n", chart.Edition(), chart.UpdateNumber(), chart.UpdateDate())
	fmt.Fprintf(w, "Issued:\t%s\n", chart.IssueDate())
	fmt.Fprintf(w, "S-57 edition:\t%s\n", chart.S57Edition())
	fmt.Fprintf(w, "Agency:\t%d\n", chart.ProducingAgency())
	fmt.Fprintf(w, "Purpose:\t%s\n", chart.ExchangePurpose())
	fmt.Fprintf(w, "Product:\t%s, %s\n", chart.ProductSpecification(), chart.ApplicationProfile())
	fmt.Fprintf(w, "Usage band:\t%s\n", chart.UsageBand())
	fmt.Fprintf(w, "Scale:\t1:%d\n", chart.CompilationScale())
	fmt.Fprintf(w, "Coordinates:\t%s\n", chart.CoordinateUnits())
	if b := chart.Bounds(); !b.IsEmpty() {
		fmt.Fprintf(w, "Bounds:\t%s\n", formatBound(b))
	}
	fmt.Fprintf(w, "Records:\t%d\n", chart.Records())
	fmt.Fprintf(w, "Nodes:\t%d\n", len(chart.Nodes()))
	fmt.Fprintf(w, "Edges:\t%d\n", len(chart.Edges()))
	fmt.Fprintf(w, "Features:\t%d\n", chart.FeatureCount())
	w.Flush()

	counts := make(map[string]int)
	var classes []string
	for _, f := range chart.Features() {
		name := f.ClassName()
		if counts[name] == 0 {
			classes = append(classes, name)
		}
		counts[name]++
	}
	if len(classes) > 0 {
		fmt.Fprintln(out, "\nObject classes:")
		for _, name := range classes {
			fmt.Fprintf(out, "  %-8s %d\n", name, counts[name])
		}
	}

	if warnings := chart.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(warnings))
		for _, warn := range warnings {
			fmt.Fprintf(out, "  %s\n", warn)
		}
	}
}

func runDDR(cmd *cobra.Command, args []string) error {
	chart, err := decodeArg(cmd, args[0])
	if err != nil {
		return err
	}

	ddr := chart.DDR()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tNAME\tSUBFIELDS\tFORMATS")
	for _, tag := range ddr.Order {
		fd := ddr.Fields[tag]
		labels := strings.Join(fd.Labels, "!")
		if fd.Repeating {
			labels = "*" + labels
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fd.Tag, fd.Name, labels, fd.FormatControls)
	}
	return w.Flush()
}

func runNodes(cmd *cobra.Command, args []string) error {
	chart, err := decodeArg(cmd, args[0])
	if err != nil {
		return err
	}

	bound := chart.Bounds()
	if s, _ := cmd.Flags().GetString("bbox"); s != "" {
		if bound, err = parseBBox(s); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if features, _ := cmd.Flags().GetBool("features"); features {
		fmt.Fprintln(w, "LNAM\tCLASS\tPRIM\tREFS")
		for _, f := range chart.FeaturesWithin(bound) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", f.Name, f.ClassName(), f.Primitive, len(f.SpatialRefs))
		}
		return w.Flush()
	}

	fmt.Fprintln(w, "KEY\tFLAG\tLAT\tLON\tDEPTH")
	for _, n := range chart.NodesWithin(bound) {
		depth := ""
		if n.HasDepth {
			depth = strconv.FormatFloat(n.Depth, 'f', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%.7f\t%.7f\t%s\n", n.Key, n.Flag, n.Lat, n.Lon, depth)
	}
	return w.Flush()
}

func runGeoJSON(cmd *cobra.Command, args []string) error {
	chart, err := decodeArg(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(chart.FeatureCollection())
}

func runIndex(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}
	opts.ErrorLog = cmd.ErrOrStderr()

	idx, errs := s57.IndexDir(args[0], opts)
	if idx == nil {
		return errs[len(errs)-1]
	}
	if len(errs) > 0 {
		glog.Warningf("%d of %d files failed to decode", len(errs), idx.Count()+len(errs))
	}

	query := queryFlags(cmd)
	bound := idx.Bounds()
	if s, _ := cmd.Flags().GetString("bbox"); s != "" {
		if bound, err = parseBBox(s); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCALE\tBAND\tEDITION\tUPDATE\tBOUNDS\tPATH")
	for _, e := range idx.Query(bound, query) {
		fmt.Fprintf(w, "%s\t1:%d\t%s\t%d\t%d\t%s\t%s\n",
			e.Name, e.CompilationScale, e.UsageBand, e.Edition, e.UpdateNumber, formatBound(e.GeoBounds), e.Path)
	}
	return w.Flush()
}

// queryFlags reads the index query filters.
func queryFlags(cmd *cobra.Command) s57.QueryOptions {
	var q s57.QueryOptions
	q.MinScale, _ = cmd.Flags().GetInt("min-scale")
	q.MaxScale, _ = cmd.Flags().GetInt("max-scale")
	return q
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("bbox %q: minimum exceeds maximum", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func formatBound(b orb.Bound) string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
}
