package main

import (
	"github.com/spf13/cobra"

	"phstats/adapters/excel"
	"phstats/internal/calculators"
)

func newProportionCmd() *cobra.Command {
	var io ioFlags
	var numerator, denominator string
	var multiplier float64

	cmd := &cobra.Command{
		Use:   "proportion [file]",
		Short: "Proportions with Wilson score confidence intervals",
		Long: `Calculate numerator/denominator × multiplier per group with Wilson score intervals.

Example: phstats proportion smokers.csv --numerator smokers --denominator adults -g area`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			result, err := calculators.Proportion(data, numerator, denominator, multiplier, io.options(cmd))
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	cmd.Flags().StringVar(&numerator, "numerator", "", "Column of observed cases")
	cmd.Flags().StringVar(&denominator, "denominator", "", "Column of total cases")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 100, "Scale of the result; 100 gives percentages")
	_ = cmd.MarkFlagRequired("numerator")
	_ = cmd.MarkFlagRequired("denominator")
	return cmd
}

func newRateCmd() *cobra.Command {
	var io ioFlags
	var numerator, denominator string
	var multiplier float64

	cmd := &cobra.Command{
		Use:   "rate [file]",
		Short: "Crude rates with Byar's or exact confidence intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			result, err := calculators.Rate(data, numerator, denominator, multiplierOrDefault(cmd, multiplier), io.options(cmd))
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	cmd.Flags().StringVar(&numerator, "numerator", "", "Column of events")
	cmd.Flags().StringVar(&denominator, "denominator", "", "Column of population")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "Rate per this many people (default PHSTATS_MULTIPLIER)")
	_ = cmd.MarkFlagRequired("numerator")
	_ = cmd.MarkFlagRequired("denominator")
	return cmd
}

func newDSRCmd() *cobra.Command {
	var io ioFlags
	var numerator, denominator, refDenominator, refFile string
	var multiplier float64
	var esp bool
	var joinLeft, joinRight []string

	cmd := &cobra.Command{
		Use:   "dsr [file]",
		Short: "Directly standardised rates with Dobson confidence intervals",
		Long: `Calculate directly standardised rates. With --esp (the default) the European
Standard Population is joined on the age band column named by --ref-denominator;
otherwise --ref-denominator names a standard population column in the data or
in the --ref file.

Example: phstats dsr deaths.csv --numerator deaths --denominator pop --ref-denominator ageband -g area`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			ref, err := readTable(refFile, excel.ReaderOptions{Sheet: io.sheetName()})
			if err != nil {
				return err
			}
			result, err := calculators.DSR(data, numerator, denominator, refDenominator, multiplierOrDefault(cmd, multiplier), calculators.DSROptions{
				Options:          io.options(cmd),
				EuropeanStandard: esp && ref == nil,
				Reference:        ref,
				RefJoinLeft:      joinLeft,
				RefJoinRight:     joinRight,
			})
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	cmd.Flags().StringVar(&numerator, "numerator", "", "Column of events per age band")
	cmd.Flags().StringVar(&denominator, "denominator", "", "Column of population per age band")
	cmd.Flags().StringVar(&refDenominator, "ref-denominator", "", "Standard population column, or the age band column with --esp")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "Rate per this many people (default PHSTATS_MULTIPLIER)")
	cmd.Flags().BoolVar(&esp, "esp", true, "Use the 2013 European Standard Population")
	cmd.Flags().StringVar(&refFile, "ref", "", "Table of standard populations to join")
	cmd.Flags().StringSliceVar(&joinLeft, "ref-join-left", nil, "Data columns to join the reference table on")
	cmd.Flags().StringSliceVar(&joinRight, "ref-join-right", nil, "Reference table columns to join on")
	_ = cmd.MarkFlagRequired("numerator")
	_ = cmd.MarkFlagRequired("denominator")
	_ = cmd.MarkFlagRequired("ref-denominator")
	return cmd
}

// indirectFlags are shared by israte and isratio
type indirectFlags struct {
	numerator, denominator       string
	refNumerator, refDenominator string
	refFile, observedFile        string
	refJoinLeft, refJoinRight    []string
	obsJoinLeft, obsJoinRight    []string
}

func addIndirectFlags(cmd *cobra.Command, f *indirectFlags) {
	cmd.Flags().StringVar(&f.numerator, "numerator", "", "Column of observed events")
	cmd.Flags().StringVar(&f.denominator, "denominator", "", "Column of population per standardisation band")
	cmd.Flags().StringVar(&f.refNumerator, "ref-numerator", "", "Column of reference events")
	cmd.Flags().StringVar(&f.refDenominator, "ref-denominator", "", "Column of reference population")
	cmd.Flags().StringVar(&f.refFile, "ref", "", "Table of reference events and population to join")
	cmd.Flags().StringSliceVar(&f.refJoinLeft, "ref-join-left", nil, "Data columns to join the reference table on")
	cmd.Flags().StringSliceVar(&f.refJoinRight, "ref-join-right", nil, "Reference table columns to join on")
	cmd.Flags().StringVar(&f.observedFile, "observed", "", "Table of observed event totals per group")
	cmd.Flags().StringSliceVar(&f.obsJoinLeft, "obs-join-left", nil, "Group columns to join the observed table on")
	cmd.Flags().StringSliceVar(&f.obsJoinRight, "obs-join-right", nil, "Observed table columns to join on")
	_ = cmd.MarkFlagRequired("numerator")
	_ = cmd.MarkFlagRequired("denominator")
	_ = cmd.MarkFlagRequired("ref-numerator")
	_ = cmd.MarkFlagRequired("ref-denominator")
}

func (f *indirectFlags) options(cmd *cobra.Command, io *ioFlags) (calculators.IndirectOptions, error) {
	opts := calculators.IndirectOptions{
		Options:      io.options(cmd),
		RefJoinLeft:  f.refJoinLeft,
		RefJoinRight: f.refJoinRight,
		ObsJoinLeft:  f.obsJoinLeft,
		ObsJoinRight: f.obsJoinRight,
	}
	var err error
	if opts.Reference, err = readTable(f.refFile, excel.ReaderOptions{Sheet: io.sheetName()}); err != nil {
		return opts, err
	}
	if opts.Observed, err = readTable(f.observedFile, excel.ReaderOptions{Sheet: io.sheetName()}); err != nil {
		return opts, err
	}
	return opts, nil
}

func newISRateCmd() *cobra.Command {
	var io ioFlags
	var flags indirectFlags
	var multiplier float64

	cmd := &cobra.Command{
		Use:   "israte [file]",
		Short: "Indirectly standardised rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, &io)
			if err != nil {
				return err
			}
			result, err := calculators.ISRate(data, flags.numerator, flags.denominator, flags.refNumerator, flags.refDenominator,
				multiplierOrDefault(cmd, multiplier), opts)
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	addIndirectFlags(cmd, &flags)
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "Rate per this many people (default PHSTATS_MULTIPLIER)")
	return cmd
}

func newISRatioCmd() *cobra.Command {
	var io ioFlags
	var flags indirectFlags
	var refValue float64

	cmd := &cobra.Command{
		Use:   "isratio [file]",
		Short: "Indirectly standardised ratios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, &io)
			if err != nil {
				return err
			}
			result, err := calculators.ISRatio(data, flags.numerator, flags.denominator, flags.refNumerator, flags.refDenominator,
				refValue, opts)
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	addIndirectFlags(cmd, &flags)
	cmd.Flags().Float64Var(&refValue, "ref-value", 1, "Value of the standardised reference ratio, usually 1 or 100")
	return cmd
}

func newMeanCmd() *cobra.Command {
	var io ioFlags
	var column string

	cmd := &cobra.Command{
		Use:   "mean [file]",
		Short: "Means with Student's t confidence intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			result, err := calculators.Mean(data, column, io.options(cmd))
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, true)
	cmd.Flags().StringVar(&column, "column", "", "Column of values to average")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newQuantileCmd() *cobra.Command {
	var io ioFlags
	var column, output string
	var nquantiles int
	var invert bool

	cmd := &cobra.Command{
		Use:   "quantile [file]",
		Short: "Assign rows to quantiles by rank",
		Long: `Assign each row to a quantile of its group by the rank of a value column.

Example: phstats quantile imd.csv --column score --nquantiles 5 -g region`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			result, err := calculators.Quantile(data, column, calculators.QuantileOptions{
				GroupBy:    io.groupBy,
				NQuantiles: nquantiles,
				Invert:     invert,
				Output:     calculators.QuantileOutput(output),
			})
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, false)
	cmd.Flags().StringSliceVarP(&io.groupBy, "group-by", "g", nil, "Columns to assign quantiles within")
	cmd.Flags().StringVar(&column, "column", "", "Column of values to rank")
	cmd.Flags().IntVar(&nquantiles, "nquantiles", calculators.DefaultNQuantiles, "Number of quantiles")
	cmd.Flags().BoolVar(&invert, "invert", true, "Put the highest values in the lowest quantile")
	cmd.Flags().StringVar(&output, "type", string(calculators.QuantileFull), "Output columns: full or standard")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}
