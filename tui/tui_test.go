package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/selfinstall/installer"
)

func update[M tea.Model](t *testing.T, m M, msg tea.Msg) (M, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(M)
	require.True(t, ok)
	return out, cmd
}

func TestProgressEvents(t *testing.T) {
	m := NewProgressModel("Installing Demo", nil)

	m, _ = update(t, m, EventMsg{Type: installer.ProgressChanged, Progress: 40, Text: "Copy a"})
	require.InDelta(t, 0.4, m.Percent(), 1e-9)
	require.Contains(t, m.View(), "Copy a")

	m, _ = update(t, m, EventMsg{Type: installer.Warning, Text: "disk is slow"})
	require.Contains(t, m.View(), "disk is slow")

	m, _ = update(t, m, EventMsg{Type: installer.InstallationFinished, Status: installer.StatusSucceeded, Progress: 100})
	require.Equal(t, installer.StatusSucceeded, m.Status())

	m, cmd := update(t, m, WorkDoneMsg{})
	require.True(t, m.Done())
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Succeeded")
}

func TestProgressKeepsLatestWarnings(t *testing.T) {
	m := NewProgressModel("t", nil)
	for i := 0; i < maxWarnings+3; i++ {
		m, _ = update(t, m, EventMsg{Type: installer.Warning, Text: strings.Repeat("w", i+1)})
	}
	require.Len(t, m.warnings, maxWarnings)
	require.Equal(t, strings.Repeat("w", maxWarnings+3), m.warnings[maxWarnings-1])
}

func TestProgressCtrlCInterruptsOnce(t *testing.T) {
	calls := 0
	m := NewProgressModel("t", func() { calls++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Nil(t, cmd, "the program waits for the rollback")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Equal(t, 1, calls)
	require.Contains(t, m.View(), "Cancelling")

	m, _ = update(t, m, WorkDoneMsg{Err: errors.New("operation cancelled")})
	require.Error(t, m.Err())
}

func newComponents(t *testing.T) (*installer.Installer, []*installer.Component) {
	t.Helper()
	in := &installer.Installer{}
	core := in.AddComponent("core")
	core.SetSuggestedState(installer.StateAlwaysInstalled)
	docs := in.AddComponent("docs")
	docs.SetDisplayName("Documentation")
	extras := in.AddComponent("extras")
	extras.SetSuggestedState(installer.StateUninstalled)
	return in, in.Components()
}

func TestSelectToggle(t *testing.T) {
	_, comps := newComponents(t)
	m := NewSelectModel("Choose", comps)
	require.Contains(t, m.View(), "[*] core")
	require.Contains(t, m.View(), "[x] Documentation")
	require.Contains(t, m.View(), "[ ] extras")

	// core is locked
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.confirmed)

	m.Apply()
	require.True(t, comps[0].IsSelected())
	require.False(t, comps[1].IsSelected())
	require.True(t, comps[2].IsSelected())
	require.Equal(t, installer.StateUninstalled, comps[1].WantedState())
}

func TestSelectAbort(t *testing.T) {
	_, comps := newComponents(t)
	m := NewSelectModel("Choose", comps)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.True(t, m.aborted)
	require.Empty(t, m.View())
}
