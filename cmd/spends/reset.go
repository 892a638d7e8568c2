package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spends/internal/cli"
	"github.com/Veraticus/spends/internal/model"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored transaction",
		Long: `Reset empties the ledger. This is a destructive operation; run
"spends process" afterwards to extract the inbox again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return resetLedger(ctx, store, cmd.InOrStdin(), cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	return cmd
}

type ledgerStore interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ClearTransactions(ctx context.Context) error
}

// resetLedger clears store after confirming on in, unless force is set.
func resetLedger(ctx context.Context, store ledgerStore, in io.Reader, out io.Writer, force bool) error {
	txns, err := store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	if len(txns) == 0 {
		fmt.Fprintln(out, "No transactions found. Nothing to reset.")
		return nil
	}

	if !force {
		fmt.Fprintf(out, "This will delete %d transactions.\n", len(txns))
		fmt.Fprint(out, "\nAre you sure you want to continue? [y/N]: ")

		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !strings.EqualFold(strings.TrimSpace(response), "y") {
			fmt.Fprintln(out, "Reset canceled.")
			return nil
		}
	}

	if err := store.ClearTransactions(ctx); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", len(txns))))
	return nil
}
