package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"vidsqueeze/internal/model"
)

// Run launches the TUI for a single job and blocks until it finishes.
func Run(ctx context.Context, opts model.Options) error {
	m := NewModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.job != nil && fm.job.err != nil {
		return fm.job.err
	}
	return nil
}
