package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crafted-tech/selfinstall/installer"
)

type choice struct {
	component *installer.Component
	selected  bool
	locked    bool
}

// SelectModel lets the user pick the components to install.
type SelectModel struct {
	title     string
	choices   []choice
	cursor    int
	confirmed bool
	aborted   bool
}

// NewSelectModel lists components with their current selection. Components
// suggested as AlwaysInstalled are shown but cannot be toggled.
func NewSelectModel(title string, components []*installer.Component) SelectModel {
	m := SelectModel{title: title}
	for _, c := range components {
		m.choices = append(m.choices, choice{
			component: c,
			selected:  c.IsSelected(),
			locked:    c.SuggestedState() == installer.StateAlwaysInstalled,
		})
	}
	return m
}

func (m SelectModel) Init() tea.Cmd { return nil }

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case " ", "x":
		if m.cursor < len(m.choices) && !m.choices[m.cursor].locked {
			m.choices[m.cursor].selected = !m.choices[m.cursor].selected
		}
	case "enter":
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.confirmed || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, ch := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		switch {
		case ch.locked:
			box = "[*]"
		case ch.selected:
			box = "[x]"
		}
		name := ch.component.DisplayName()
		if name == "" {
			name = ch.component.Name()
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, name)
		if desc := ch.component.Description(); desc != "" && i == m.cursor {
			b.WriteString("      " + faintStyle.Render(desc) + "\n")
		}
	}
	b.WriteString(faintStyle.Render("\nspace: toggle  enter: install  esc: cancel") + "\n")
	return b.String()
}

// Apply stores the choices as each component's WantedState.
func (m SelectModel) Apply() {
	for _, ch := range m.choices {
		if ch.locked {
			continue
		}
		state := installer.StateUninstalled
		if ch.selected {
			state = installer.StateInstalled
		}
		ch.component.SetWantedState(state)
	}
}

// SelectComponents asks the user which components to install and records the
// answer. It returns installer.ErrCancelled if the user backs out.
func SelectComponents(out io.Writer, in *installer.Installer, title string) error {
	if len(in.Components()) == 0 {
		return nil
	}
	final, err := tea.NewProgram(NewSelectModel(title, in.Components()), tea.WithOutput(out)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(SelectModel)
	if !ok {
		return errors.New("unexpected selection model")
	}
	if m.aborted {
		return installer.ErrCancelled
	}
	m.Apply()
	return nil
}
