// Package cli exposes the research workflow as cobra commands.
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"StockResearch/internal/app"
	"StockResearch/internal/config"
	"StockResearch/internal/logging"
	"StockResearch/internal/usecase"
)

// NewRootCommand builds the stockresearch command tree. Each subcommand
// loads configuration and wires the application on its own.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stockresearch",
		Short:         "Pick a stock and two papers, and send them off for deep research",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newResearchCommand(),
		newEligibleCommand(),
		newPublishCommand(),
		newHistoryCommand(),
		newCheckOpenAICommand(),
	)
	return root
}

func withApplication(ctx context.Context, fn func(*app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(application)
}

func newResearchCommand() *cobra.Command {
	var (
		opts  usecase.RunOptions
		every time.Duration
	)

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Build a research prompt for a ticker and dispatch it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(a *app.Application) error {
				if every > 0 {
					return a.RunEvery(cmd.Context(), every, opts)
				}

				req, err := a.Research().Run(cmd.Context(), opts)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ticker:  %s\n", req.Ticker)
				fmt.Fprintf(out, "paper 1: %s (%s)\n", req.Pair.First.Title, req.Pair.First.PublishedDate)
				fmt.Fprintf(out, "paper 2: %s (%s)\n", req.Pair.Second.Title, req.Pair.Second.PublishedDate)
				if opts.DryRun {
					fmt.Fprintf(out, "\n%s\n", req.Prompt)
					return nil
				}
				fmt.Fprintf(out, "response id: %s\n", req.ResponseID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Ticker, "ticker", "", "research this ticker instead of a random eligible one")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the prompt without dispatching it")
	cmd.Flags().DurationVar(&every, "every", 0, "keep running on this interval (e.g. 24h)")
	return cmd
}

func newEligibleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eligible",
		Short: "List tickers with papers in at least two categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(a *app.Application) error {
				summaries, err := a.Eligibility().List(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TICKER\tPAPERS\tCATEGORIES")
				for _, s := range summaries {
					fmt.Fprintf(w, "%s\t%d\t%s\n", s.Ticker, s.Papers, strings.Join(s.Categories, ", "))
				}
				return w.Flush()
			})
		},
	}
}

func newPublishCommand() *cobra.Command {
	var opts usecase.PublishOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Post a research report to WordPress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(a *app.Application) error {
				post, err := a.Publish().Run(cmd.Context(), opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "post %d (%s): %s\n", post.ID, post.Status, post.Link)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "report file (.html, or plain text/markdown)")
	cmd.Flags().StringVar(&opts.ResponseID, "response-id", "", "publish the output of a finished research response")
	cmd.Flags().StringVar(&opts.Title, "title", "", "post title (defaults to the report heading)")
	cmd.Flags().StringVar(&opts.Status, "status", "draft", "WordPress post status")
	cmd.MarkFlagsMutuallyExclusive("file", "response-id")
	cmd.MarkFlagsOneRequired("file", "response-id")
	return cmd
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently dispatched research requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(a *app.Application) error {
				requests, err := a.History().Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CREATED\tTICKER\tSTATUS\tRESPONSE\tPAPERS")
				for _, r := range requests {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s | %s\n",
						r.CreatedAt.Format(time.RFC3339), r.Ticker, r.Status, r.ResponseID,
						r.Pair.First.ID, r.Pair.Second.ID)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of requests to show")
	return cmd
}

func newCheckOpenAICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-openai",
		Short: "Verify the OpenAI API key with a tiny completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(a *app.Application) error {
				reply, err := a.CheckOpenAI(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OpenAI API key works: %s\n", reply)
				return nil
			})
		},
	}
}
