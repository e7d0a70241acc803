package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"facility-recon/internal/reconcile/service"
)

// NewProgress: полоса прогресса по мастер-списку. При total == 0 ничего не рисует.
func NewProgress(w io.Writer, total int) service.ProgressFunc {
	if total == 0 {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Matching names...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)
	return func(done, _ int) {
		_ = bar.Set(done)
	}
}
