package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/internal/log"
)

func rangeCmd() *cobra.Command {
	var (
		envFile      string
		maxRangeSize int
		start        float64
		end          float64
	)

	cmd := &cobra.Command{
		Use:   "range [START END]",
		Short: "Print the numbers between START and END",
		Long: `Print the numbers between START and END, inclusive, separated by commas.

Bounds may be given as arguments or with --start and --end. Use -- before
negative arguments so they are not read as flags:

  numrange range 3 8
  numrange range -- -3 3
  numrange range --start -3 --end 3`,
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("expected START and END, got one argument")
			}
			if len(args) == 0 && !(cmd.Flags().Changed("start") && cmd.Flags().Changed("end")) {
				return fmt.Errorf("START and END are required")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				var err error
				if start, err = parseBound(args[0], "START"); err != nil {
					return err
				}
				if end, err = parseBound(args[1], "END"); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			cfg = applyServeOverrides(cfg, "", 0, maxRangeSize)

			client, err := numrange.New(clientOptions(cfg, log.NewLogger(cfg).Slog())...)
			if err != nil {
				return fmt.Errorf("create numrange client: %w", err)
			}
			defer func() { _ = client.Close() }()

			result := client.Ranges.Generate(cmd.Context(), start, end)
			if !result.OK() {
				// The message already reads "Error: ..." and is printed as is.
				return errors.New(result.String())
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().IntVar(&maxRangeSize, "max-range-size", 0, "Largest range that may be generated (default: 1000)")
	cmd.Flags().Float64Var(&start, "start", 0, "Inclusive lower bound")
	cmd.Flags().Float64Var(&end, "end", 0, "Inclusive upper bound")

	return cmd
}

func parseBound(raw, name string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %q", name, raw)
	}
	return v, nil
}
