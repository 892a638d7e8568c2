package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/spends/internal/model"
)

// RenderProgress draws a progress bar from status snapshots until the run
// it is watching finishes or updates is closed, and returns the last
// snapshot seen. Snapshots from before the run started are skipped.
func RenderProgress(w io.Writer, updates <-chan model.ProcessingStatus) model.ProcessingStatus {
	var (
		bar     *progressbar.ProgressBar
		last    model.ProcessingStatus
		started bool
	)

	for status := range updates {
		if !started {
			if !status.IsProcessing {
				continue
			}
			started = true
			bar = newProgressBar(w, status.TotalMessages)
		}

		last = status
		bar.Describe(describe(status))
		if err := bar.Set(status.ProcessedMessages); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}

		if !status.IsProcessing {
			if err := bar.Finish(); err != nil {
				slog.Debug("Failed to finish progress bar", "error", err)
			}
			break
		}
	}

	return last
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func describe(status model.ProcessingStatus) string {
	tier := "rules"
	if status.Tier == model.TierLLM {
		tier = "llm " + robotIcon
	}
	return fmt.Sprintf("[cyan][bold]Scanning messages[reset] (%s, %d found)", tier, status.DetectedTransactions)
}
