package cli

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure ProgressBar implements the interface.
var _ driven.ProgressReporter = (*ProgressBar)(nil)

// ProgressBar reports batch ingestion on stderr.
type ProgressBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressBar returns a reporter when stderr is a terminal and nil
// otherwise, so piped output stays clean.
func NewProgressBar() driven.ProgressReporter {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return &ProgressBar{out: os.Stderr}
}

// Start begins a bar of total steps.
func (p *ProgressBar) Start(total int) {
	if total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Increment advances the bar by one file.
func (p *ProgressBar) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Finish clears the bar.
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
