package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spends/internal/cli"
	"github.com/Veraticus/spends/internal/common"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/model"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Extract a transaction from a single message",
		Long: `Parse runs extraction on one message without touching the ledger.

The message is taken from the argument, or from stdin when the argument is
"-". With --image a screenshot of the notification is read by the language
model instead; this requires a configured provider.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().String("image", "", "path to a screenshot of the notification")
	cmd.Flags().Bool("rules", false, "use the rule-based parser even when a model is configured")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	imagePath, _ := cmd.Flags().GetString("image")
	rulesOnly, _ := cmd.Flags().GetBool("rules")

	ctx := cmd.Context()
	rules, err := newRules(cfg)
	if err != nil {
		return err
	}

	var gen llm.TextGenerator
	if !rulesOnly {
		if gen, err = createGenerator(ctx, cfg); err != nil {
			return err
		}
	}
	ext, closeExt := newExtractor(cfg, gen, rules, nil)
	defer closeExt()

	var txn *model.Transaction
	if imagePath != "" {
		if ext == nil {
			return common.NewUserError("Set llm.provider in the config to read screenshots", common.ErrMissingConfig)
		}
		txn, err = parseImage(ctx, ext, imagePath)
	} else {
		var message string
		if message, err = readMessage(args, cmd.InOrStdin()); err != nil {
			return err
		}
		var extractor engine.Extractor = rules
		if ext != nil {
			extractor = ext
		}
		txn, err = extractor.Extract(ctx, message)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if txn == nil {
		fmt.Fprintln(out, cli.FormatInfo("Not a transaction"))
		return nil
	}
	fmt.Fprintln(out, cli.RenderTransactions([]model.Transaction{*txn}))
	return nil
}

// readMessage takes the message from args, or from in when it is "-" or absent.
func readMessage(args []string, in io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		return "", errors.New("no message given")
	}
	return message, nil
}

func parseImage(ctx context.Context, ext *llm.Extractor, path string) (*model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return ext.ExtractImage(ctx, llm.Image{MIMEType: mime, Data: data})
}
