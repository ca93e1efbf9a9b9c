package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crafted-tech/selfinstall/installer"
)

// Run shows a progress display on out while in runs, and returns the run's
// error. Ctrl+C interrupts the run, which then rolls back before the
// display closes.
func Run(ctx context.Context, out io.Writer, in *installer.Installer, title string) error {
	model := NewProgressModel(title, in.Interrupt)
	p := tea.NewProgram(model, tea.WithOutput(out))

	in.Subscribe(func(e installer.Event) {
		p.Send(EventMsg(e))
	})

	runErr := make(chan error, 1)
	go func() {
		err := in.Run(ctx)
		runErr <- err
		p.Send(WorkDoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		in.Interrupt()
		<-runErr
		return err
	}
	return <-runErr
}
