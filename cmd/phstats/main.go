package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phstats/adapters/excel"
	"phstats/internal"
	"phstats/internal/calculators"
	"phstats/internal/config"
	"phstats/internal/frame"
)

var (
	cfg     *config.Config
	envFile string
)

// ioFlags are the input and output settings every subcommand shares
type ioFlags struct {
	out        string
	sheet      string
	jsonPath   string
	groupBy    []string
	confidence []float64
	metadata   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phstats",
		Short: "Public health statistics: rates, proportions, standardised rates and funnel plots",
		Long: `phstats calculates public health statistics with confidence intervals from a
CSV, xlsx or JSON table and writes the results as CSV (stdout by default) or xlsx.

Defaults come from the environment or a .env file: PHSTATS_CONFIDENCE,
PHSTATS_MULTIPLIER, PHSTATS_YEARS_OF_DATA, PHSTATS_SHEET, PHSTATS_METADATA and
PHSTATS_LOG_LEVEL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if envFile != "" {
				cfg, err = config.Load(envFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.Logging.Level))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this file instead of ./.env")

	rootCmd.AddCommand(
		newProportionCmd(),
		newRateCmd(),
		newDSRCmd(),
		newISRateCmd(),
		newISRatioCmd(),
		newMeanCmd(),
		newQuantileCmd(),
		newFunnelLimitsCmd(),
		newFunnelSignificanceCmd(),
		newFunnelPointsCmd(),
	)
	return rootCmd
}

func addIOFlags(cmd *cobra.Command, io *ioFlags, grouped bool) {
	cmd.Flags().StringVarP(&io.out, "out", "o", "", "Write results to this .csv or .xlsx file instead of stdout")
	cmd.Flags().StringVar(&io.sheet, "sheet", "", "Worksheet to read from xlsx input and write to xlsx output (default PHSTATS_SHEET)")
	cmd.Flags().StringVar(&io.jsonPath, "json-path", "", "Path of the record array inside JSON input, e.g. data.rows")
	if grouped {
		cmd.Flags().StringSliceVarP(&io.groupBy, "group-by", "g", nil, "Columns to group results by")
		cmd.Flags().Float64SliceVarP(&io.confidence, "confidence", "c", nil, "Confidence levels, e.g. 0.95,0.998 (default PHSTATS_CONFIDENCE)")
		cmd.Flags().BoolVar(&io.metadata, "metadata", true, "Add Statistic, Confidence and Method columns (default PHSTATS_METADATA)")
	}
}

// options resolves the shared calculator options against the configuration
func (io *ioFlags) options(cmd *cobra.Command) calculators.Options {
	opts := calculators.Options{
		GroupBy:    io.groupBy,
		Confidence: cfg.Stats.Confidence,
		Metadata:   cfg.Stats.Metadata,
	}
	if cmd.Flags().Changed("confidence") {
		opts.Confidence = io.confidence
	}
	if cmd.Flags().Changed("metadata") {
		opts.Metadata = io.metadata
	}
	return opts
}

func (io *ioFlags) sheetName() string {
	if io.sheet != "" {
		return io.sheet
	}
	return cfg.Input.Sheet
}

func (io *ioFlags) read(path string) (*frame.Frame, error) {
	return readTable(path, excel.ReaderOptions{Sheet: io.sheetName(), JSONPath: io.jsonPath})
}

func (io *ioFlags) write(cmd *cobra.Command, result *frame.Frame) error {
	if io.out == "" {
		return excel.WriteCSV(cmd.OutOrStdout(), result)
	}
	return excel.WriteFile(result, io.out, io.sheetName())
}

// readTable reads an input or reference table; an empty path gives nil
func readTable(path string, opts excel.ReaderOptions) (*frame.Frame, error) {
	if path == "" {
		return nil, nil
	}
	return excel.NewDataReader(path, opts).ReadData()
}

func multiplierOrDefault(cmd *cobra.Command, value float64) float64 {
	if cmd.Flags().Changed("multiplier") {
		return value
	}
	return cfg.Stats.Multiplier
}
