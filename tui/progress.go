package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crafted-tech/selfinstall/installer"
)

const maxWarnings = 5

// EventMsg carries an installer event into the program.
type EventMsg installer.Event

// WorkDoneMsg ends the program once the run has returned.
type WorkDoneMsg struct {
	Err error
}

// ProgressModel shows the progress bar, the current progress line and the
// latest warnings of one run.
type ProgressModel struct {
	title     string
	bar       progress.Model
	percent   float64
	text      string
	warnings  []string
	status    installer.Status
	interrupt func()

	interrupted bool
	done        bool
	err         error
}

// NewProgressModel creates a model titled title. interrupt is called when
// the user presses Ctrl+C; the model keeps running until WorkDoneMsg.
func NewProgressModel(title string, interrupt func()) ProgressModel {
	return ProgressModel{
		title:     title,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		interrupt: interrupt,
	}
}

func (m ProgressModel) Init() tea.Cmd { return nil }

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.applyEvent(installer.Event(msg))
		return m, nil

	case WorkDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.interrupted && m.interrupt != nil {
				m.interrupt()
			}
			m.interrupted = true
		}
	}
	return m, nil
}

func (m *ProgressModel) applyEvent(e installer.Event) {
	switch e.Type {
	case installer.ProgressChanged:
		m.percent = float64(e.Progress) / 100
		if e.Text != "" {
			m.text = e.Text
		}
	case installer.Warning:
		m.warnings = append(m.warnings, e.Text)
		if len(m.warnings) > maxWarnings {
			m.warnings = m.warnings[len(m.warnings)-maxWarnings:]
		}
	case installer.InstallationFinished, installer.UninstallationFinished:
		m.status = e.Status
		m.percent = float64(e.Progress) / 100
	}
}

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteByte('\n')
	if m.text != "" {
		b.WriteString(faintStyle.Render(m.text))
		b.WriteByte('\n')
	}
	for _, w := range m.warnings {
		b.WriteString(warningStyle.Render("! " + w))
		b.WriteByte('\n')
	}

	switch {
	case m.done && m.status != installer.StatusUnfinished:
		fmt.Fprintf(&b, "\n%s\n", StatusStyle(m.status).Render(m.status.String()))
	case m.done && m.err != nil:
		fmt.Fprintf(&b, "\n%s\n", StatusStyle(installer.StatusFailed).Render("Error: "+m.err.Error()))
	case m.interrupted:
		b.WriteString("\nCancelling...\n")
	case !m.done:
		b.WriteString(faintStyle.Render("\nPress Ctrl+C to cancel.") + "\n")
	}
	return b.String()
}

// Percent returns the last progress, 0-1.
func (m ProgressModel) Percent() float64 { return m.percent }

// Status returns the final status reported by the run.
func (m ProgressModel) Status() installer.Status { return m.status }

// Done reports whether the run has returned.
func (m ProgressModel) Done() bool { return m.done }

// Err returns the error the run returned.
func (m ProgressModel) Err() error { return m.err }
