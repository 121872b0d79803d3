package main

import (
	"github.com/spf13/cobra"

	"phstats/domain/stats"
	"phstats/internal/calculators"
	"phstats/internal/frame"
	"phstats/internal/funnel"
)

// funnelFlags are shared by the funnel subcommands
type funnelFlags struct {
	statistic   string
	rateType    string
	ratioType   string
	numerator   string
	denominator string
	rate        string
	multiplier  float64
	yearsOfData float64
}

func addFunnelFlags(cmd *cobra.Command, f *funnelFlags) {
	cmd.Flags().StringVar(&f.statistic, "statistic", string(stats.StatisticProportion), "Statistic of the funnel: proportion, ratio or rate")
	cmd.Flags().StringVar(&f.rateType, "rate-type", string(stats.RateCrude), "Rate statistics only: dsr or crude")
	cmd.Flags().StringVar(&f.ratioType, "ratio-type", string(stats.RatioCount), "Ratio statistics only: count or isr")
	cmd.Flags().StringVar(&f.numerator, "numerator", "", "Column of events, or observed events for ratios")
	cmd.Flags().StringVar(&f.denominator, "denominator", "", "Column of population, or expected events for ratios")
	cmd.Flags().StringVar(&f.rate, "rate", "", "Column of rates, for rate statistics")
	cmd.Flags().Float64Var(&f.multiplier, "multiplier", 0, "Scale of the statistic, e.g. 100 for percentages (default PHSTATS_MULTIPLIER)")
	cmd.Flags().Float64Var(&f.yearsOfData, "years-of-data", 0, "Years the rates span (default PHSTATS_YEARS_OF_DATA)")
	_ = cmd.MarkFlagRequired("numerator")
}

func (f *funnelFlags) options(cmd *cobra.Command, io *ioFlags) calculators.FunnelOptions {
	opts := calculators.FunnelOptions{
		Options: funnel.Options{
			Statistic:   stats.StatisticType(f.statistic),
			Multiplier:  multiplierOrDefault(cmd, f.multiplier),
			RateType:    stats.RateType(f.rateType),
			RatioType:   stats.RatioType(f.ratioType),
			YearsOfData: cfg.Stats.YearsOfData,
		},
		Numerator:   f.numerator,
		Denominator: f.denominator,
		Rate:        f.rate,
		Metadata:    cfg.Stats.Metadata,
	}
	if cmd.Flags().Changed("years-of-data") {
		opts.YearsOfData = f.yearsOfData
	}
	if cmd.Flags().Changed("metadata") {
		opts.Metadata = io.metadata
	}
	return opts
}

type funnelFunc func(*frame.Frame, calculators.FunnelOptions) (*frame.Frame, error)

func newFunnelCmd(use, short string, run funnelFunc, metadata bool) *cobra.Command {
	var io ioFlags
	var flags funnelFlags

	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.read(args[0])
			if err != nil {
				return err
			}
			result, err := run(data, flags.options(cmd, &io))
			if err != nil {
				return err
			}
			return io.write(cmd, result)
		},
	}

	addIOFlags(cmd, &io, false)
	addFunnelFlags(cmd, &flags)
	if metadata {
		cmd.Flags().BoolVar(&io.metadata, "metadata", true, "Add Statistic and Method columns (default PHSTATS_METADATA)")
	}
	return cmd
}

func newFunnelLimitsCmd() *cobra.Command {
	cmd := newFunnelCmd("funnel-limits", "Control limits of a funnel plot", calculators.FunnelLimits, true)
	cmd.Long = `Calculate the 100 point reference curve of a funnel plot, with 95.0% (2 sigma)
and 99.8% (3 sigma) control limits, from the records of every area.

Example: phstats funnel-limits areas.csv --statistic rate --rate-type dsr --numerator deaths --rate dsr --multiplier 100000`
	return cmd
}

func newFunnelSignificanceCmd() *cobra.Command {
	return newFunnelCmd("funnel-significance", "Classify each area against the funnel plot control limits", calculators.FunnelSignificance, false)
}

func newFunnelPointsCmd() *cobra.Command {
	return newFunnelCmd("funnel-points", "Plotting positions of each area on a rate funnel plot", calculators.FunnelPoints, false)
}
