package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/influence-graph-service/pkg/tabular"
	"github.com/gilchrisn/influence-graph-service/pkg/topk"
)

const (
	defaultInput     = "input_data/influencescores_testtreatsedge1.csv"
	defaultOutputDir = "filtered_data"
)

type options struct {
	output     string
	scoreField string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "topscores [FILE] N",
		Short: "Find the N highest scoring rows of a CSV file",
		Example: `  # top 100000 rows of the default input
  topscores 100000

  # a specific file
  topscores input_data/myfile.csv 50000

  # custom output location
  topscores 100000 -o filtered_data/custom_output.csv`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				return fmt.Errorf("%w: %v", topk.ErrInvalidArgument, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.OutOrStdout(), args, opts)
			if err != nil {
				log.Error().Err(err).Msg("Top score selection failed")
			}
			return err
		},
	}

	// "-5" parses as an unknown shorthand, so a negative N lands here.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", topk.ErrInvalidArgument, err)
	})

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default filtered_data/top_N_results.csv, - for stdout)")
	cmd.Flags().StringVar(&opts.scoreField, "score-field", topk.DefaultScoreField, "column holding the numeric score")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	return cmd
}

// parseArgs accepts "N" or "FILE N".
func parseArgs(args []string) (string, int, error) {
	if n, err := strconv.Atoi(args[0]); err == nil {
		if len(args) > 1 {
			return "", 0, fmt.Errorf("%w: N given as first argument, don't provide it again", topk.ErrInvalidArgument)
		}
		if n <= 0 {
			return "", 0, fmt.Errorf("%w: N must be a positive integer", topk.ErrInvalidArgument)
		}
		return defaultInput, n, nil
	}

	if len(args) < 2 {
		return "", 0, fmt.Errorf("%w: when providing a filename, N is required", topk.ErrInvalidArgument)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("%w: N must be an integer, got %q", topk.ErrInvalidArgument, args[1])
	}
	if n <= 0 {
		return "", 0, fmt.Errorf("%w: N must be a positive integer", topk.ErrInvalidArgument)
	}
	return args[0], n, nil
}

func run(stdout io.Writer, args []string, opts *options) error {
	if level, err := zerolog.ParseLevel(opts.logLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	input, n, err := parseArgs(args)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("%s/top_%d_results.csv", defaultOutputDir, n)
	}

	log.Info().
		Str("input", input).
		Str("output", output).
		Int("n", n).
		Msg("Finding top scores")

	logger := log.Logger
	result, err := topk.SelectFile(input, n, topk.Options{
		ScoreField: opts.scoreField,
		Logger:     &logger,
	})
	if err != nil {
		return err
	}

	if result.Invalid > 0 {
		log.Warn().Int64("invalid_rows", result.Invalid).Msg("Skipped rows with invalid scores")
	}

	if len(result.Records) == 0 {
		log.Warn().Msg("No valid rows found")
		return nil
	}

	log.Info().Int("rows", len(result.Records)).Msg("Found top scoring rows")

	if output == "-" {
		return tabular.WriteRows(stdout, result.Header, result.Rows())
	}
	if err := tabular.SaveRows(output, result.Header, result.Rows()); err != nil {
		return err
	}

	log.Info().Str("output", output).Msg("Results written")
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, topk.ErrInvalidArgument):
		return 2
	default:
		return 1
	}
}
