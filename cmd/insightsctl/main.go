// Package main provides insightsctl, a command-line client for the analytics engine.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"callcenter-insights-go/internal/app"
	"callcenter-insights-go/internal/config"
	"callcenter-insights-go/internal/dataset"
	"callcenter-insights-go/internal/logger"
	"callcenter-insights-go/internal/processor"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	recordsPath string
	verbose     bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "insightsctl",
		Short: "Query call center analytics from the command line",
		Long: `Query call center analytics from the command line.

Examples:
  insightsctl ask "Show department breakdown" --structured
  insightsctl ask "Why is satisfaction dropping?"
  insightsctl snapshot
  insightsctl export "agent data" -o agents.xlsx
  insightsctl export --records -o calls.xlsx
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.recordsPath, "records", "", "Call record workbook (overrides RECORDS_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(askCmd(opts), snapshotCmd(opts), exportCmd(opts))
	return cmd
}

func (o *options) build() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.recordsPath != "" {
		cfg.RecordsPath = o.recordsPath
	}
	log := logger.Discard()
	if o.verbose {
		log = logger.NewWithOutput(os.Stderr, cfg.Environment, cfg.LogLevel)
	}
	return app.New(cfg, log)
}

func askCmd(opts *options) *cobra.Command {
	var structured, stream bool

	cmd := &cobra.Command{
		Use:   "ask QUERY",
		Short: "Answer an analytics question and print the response envelope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req := processor.Request{Query: strings.Join(args, " "), UseStructuredData: structured}
			out := cmd.OutOrStdout()
			if stream {
				_, err := a.Assembler.HandleStream(ctx, req, func(fragment string) error {
					_, err := io.WriteString(out, fragment)
					return err
				})
				fmt.Fprintln(out)
				return err
			}

			env, err := a.Assembler.Handle(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(out, env)
		},
	}

	cmd.Flags().BoolVar(&structured, "structured", false, "Answer from local analytics only")
	cmd.Flags().BoolVar(&stream, "stream", false, "Print the answer text as it arrives")
	return cmd
}

func snapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the analytics snapshot over the current records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.Assembler.Snapshot())
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var output string
	var records bool

	cmd := &cobra.Command{
		Use:   "export [QUERY]",
		Short: "Write the table for a query, or the record set, to an .xlsx workbook",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			query := strings.Join(args, " ")
			if !records && strings.TrimSpace(query) == "" {
				return errors.New("a query is required unless --records is set")
			}

			a, err := opts.build()
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			if records {
				err = dataset.WriteRecords(f, a.Assembler.Records())
			} else {
				_, resp := a.Assembler.Structured(query)
				err = dataset.WriteTable(f, *resp.TableData)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination workbook")
	cmd.Flags().BoolVar(&records, "records", false, "Export the call records instead of a query table")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
