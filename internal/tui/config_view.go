package tui

import (
	"fmt"
	"strings"

	"distrolabs/wslm/internal/config"
	"distrolabs/wslm/internal/tui/components"
	"distrolabs/wslm/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Config messages ---

// configSavedMsg reports a successful write of one setting.
type configSavedMsg struct {
	key string
}

type configSaveErrorMsg struct {
	err error
}

// --- Config model ---

type configViewModel struct {
	cfg  *config.Config
	keys []config.KeySpec

	// path is where the settings are persisted; shown in the header so
	// the user knows which file they are editing.
	path string

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status  string
	isError bool
}

// RunConfigView starts the interactive settings editor TUI.
func RunConfigView() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path, err := config.Path()
	if err != nil {
		return err
	}

	m := configViewModel{
		cfg:  cfg,
		keys: config.Keys,
		path: path,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m configViewModel) Init() tea.Cmd {
	return nil
}

func (m configViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case configSavedMsg:
		m.editing = false
		m.status = fmt.Sprintf("Saved %s", msg.key)
		m.isError = false
		return m, nil

	case configSaveErrorMsg:
		m.status = "Error: " + msg.err.Error()
		m.isError = true
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m configViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "g":
		m.cursor = 0
	case "G":
		if len(m.keys) > 0 {
			m.cursor = len(m.keys) - 1
		}
	case "enter", "e":
		return m.beginEdit()
	}

	return m, nil
}

// beginEdit opens the inline editor pre-filled with the selected key's
// current value.
func (m configViewModel) beginEdit() (tea.Model, tea.Cmd) {
	spec := m.keys[m.cursor]
	ti := textinput.New()
	ti.SetValue(spec.Get(m.cfg))
	ti.Focus()
	ti.Width = 40
	ti.Placeholder = "empty clears the setting"
	m.editor = ti
	m.editing = true
	m.status = ""
	return m, textinput.Blink
}

func (m configViewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.editor.Value())
		spec := m.keys[m.cursor]
		// Validation happens in the key's setter; a rejected value keeps
		// the editor open so it can be corrected in place.
		if err := spec.Set(m.cfg, value); err != nil {
			m.status = "Error: " + err.Error()
			m.isError = true
			return m, nil
		}
		return m, m.saveConfig(spec.Name)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m configViewModel) saveConfig(key string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		if err := cfg.Save(); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{key: key}
	}
}

// --- View ---

func (m configViewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "settings", m.path)

	var footerBindings []components.KeyBinding
	if m.editing {
		footerBindings = []components.KeyBinding{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	} else {
		footerBindings = []components.KeyBinding{
			{Key: "j/k", Desc: "navigate"},
			{Key: "e", Desc: "edit"},
			{Key: "q", Desc: "quit"},
		}
	}
	footer := components.Footer(m.width, footerBindings)

	statusBar := ""
	if m.status != "" {
		statusBar = components.StatusBar(m.width, m.status, m.isError)
	}

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	statusH := lipgloss.Height(statusBar)
	contentH := m.height - headerH - footerH - statusH
	if contentH < 1 {
		contentH = 1
	}

	content := m.renderSettings(contentH)

	sections := []string{header, content}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

const (
	settingsCardWidth = 64
	settingsNameWidth = 26
)

func (m configViewModel) renderSettings(height int) string {
	title := styles.Title.Render("Settings")

	if len(m.keys) == 0 {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				title, "", styles.MutedText.Render("Nothing to configure.")),
		)
	}

	var b strings.Builder
	for i, spec := range m.keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderSetting(spec, i == m.cursor))
	}

	card := styles.Card.Width(settingsCardWidth).Render(b.String())
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		combined,
	)
}

// renderSetting draws one key as a name/value line; the selected key
// additionally shows its description (or the inline editor) on a
// second line.
func (m configViewModel) renderSetting(spec config.KeySpec, selected bool) string {
	value := spec.Get(m.cfg)
	if value == "" {
		value = "—"
	}

	if !selected {
		return "  " + styles.MutedText.Width(settingsNameWidth).Render(spec.Name) +
			styles.MutedText.Render(value)
	}

	marker := styles.AccentText.Render("▸ ")
	name := styles.Label.Width(settingsNameWidth).Render(spec.Name)

	if m.editing {
		return marker + name + m.editor.View()
	}

	line := marker + name + styles.Value.Bold(true).Render(value)
	detail := "  " + styles.MutedText.Italic(true).Render("└ "+spec.Description)
	return line + "\n" + detail
}
