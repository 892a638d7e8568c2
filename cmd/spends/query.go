package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spends/internal/assistant"
	"github.com/Veraticus/spends/internal/cli"
	"github.com/Veraticus/spends/internal/common"
)

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query against the ledger",
		Long: `Query runs a single SELECT (or WITH ... SELECT) statement against the
transactions table and prints the rows.`,
		Example: `  spends query "SELECT category, SUM(amount) AS spent FROM transactions WHERE type = 'DEBIT' GROUP BY category"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.RawQuery(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRows(rows))
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your spending in plain language",
		Long: `Ask has the language model write a read-only query for the question, runs
it against the ledger and summarizes the result. Requires an llm.provider.`,
		Example: `  spends ask "How much did I spend on food this month?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			showSQL, _ := cmd.Flags().GetBool("show-sql")

			ctx := cmd.Context()
			gen, err := createGenerator(ctx, cfg)
			if err != nil {
				return err
			}
			if gen == nil {
				return common.NewUserError("Set llm.provider in the config to ask questions", common.ErrMissingConfig)
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			answer, err := assistant.New(gen, store, cfg.LLM.Timeout, slog.Default()).Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showSQL {
				fmt.Fprintln(out, cli.FormatInfo(answer.SQL))
				fmt.Fprintln(out, cli.RenderRows(answer.Rows))
			}
			fmt.Fprintln(out, answer.Text)
			return nil
		},
	}
	cmd.Flags().Bool("show-sql", false, "print the generated query and its rows")
	return cmd
}
