package pipeline

import (
	"io"

	"github.com/pterm/pterm"
)

type progressBar struct {
	bar *pterm.ProgressbarPrinter
}

// NewProgressBar starts a terminal progress bar over total frames. A zero
// total renders nothing.
func NewProgressBar(total int, w io.Writer) (Progress, error) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Parsing frames").
		WithWriter(w).
		Start()
	if err != nil {
		return nil, err
	}
	return &progressBar{bar: bar}, nil
}

func (p *progressBar) Increment() {
	p.bar.Increment()
}

func (p *progressBar) Stop() {
	_, _ = p.bar.Stop()
}
