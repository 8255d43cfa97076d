package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"jasm/internal/buildpipeline"
	"jasm/internal/driver"
	"jasm/internal/source"
	"jasm/internal/ui"
)

type batchOutcome struct {
	result *driver.BatchResult
	err    error
}

// runBatchWithUI assembles files in the background while the progress view
// consumes their events.
func runBatchWithUI(ctx context.Context, title string, fs *source.FileSet, files []string, jobs int, opts driver.AssembleOptions) (*driver.BatchResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := driver.AssembleFiles(ctx, fs, files, jobs, optsCopy)
		outcomeCh <- batchOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// view may quit early; workers must not block on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
