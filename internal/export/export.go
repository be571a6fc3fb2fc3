// Package export trains one configuration without the UI and writes the
// resulting plot as a standalone HTML page.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/kartoza/boolnet-studio/internal/config"
	"github.com/kartoza/boolnet-studio/internal/dispatch"
	"github.com/kartoza/boolnet-studio/internal/plot"
	"github.com/kartoza/boolnet-studio/internal/session"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bb86fc"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#03dac6")).Width(12)
)

// Run submits the default configuration once and writes the resulting plot
// to fileName. A summary goes to out and a spinner to progress while the
// training service works.
func Run(out, progress io.Writer, cfg config.Config, fileName string) error {
	s := session.New(dispatch.New(cfg))

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("training at "+cfg.TrainURL),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	start := time.Now()
	state, err := s.Submit(context.Background())
	close(done)
	_ = bar.Finish()
	if err != nil {
		return errors.WithMessage(err, "training request failed")
	}

	fig := plot.NewFigure(state.Points)
	if fig == nil {
		return errors.New("training service returned no points")
	}
	if err := plot.WriteHTMLFile(fileName, fig); err != nil {
		return err
	}
	info, err := os.Stat(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %q", fileName)
	}

	summary := plot.Summarize(state.Points)
	c := state.Config
	fmt.Fprintln(out, titleStyle.Render(plot.Title))
	row := func(key, value string) {
		fmt.Fprintln(out, keyStyle.Render(key)+value)
	}
	row("function", c.BooleanFunction)
	row("network", fmt.Sprintf("%d layers, %s, %s, %d epochs, lr %g",
		len(c.Layers), c.Optimizer, c.LossFunction, c.Epochs, c.LearningRate))
	row("points", humanize.Comma(int64(summary.Points)))
	row("output", fmt.Sprintf("min %.4f  max %.4f  mean %.4f", summary.MinZ, summary.MaxZ, summary.MeanZ))
	row("took", time.Since(start).Round(time.Millisecond).String())
	row("written", fmt.Sprintf("%s (%s)", fileName, humanize.Bytes(uint64(info.Size()))))
	return nil
}
