// Package tui implements the interactive full-screen interface for
// wslm, built on Bubbletea. The distro list is the entry view; guarded
// actions surface the stop confirmation as an overlay and report
// progress and errors through the shared slot tracker.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/lifecycle"
	"distrolabs/wslm/internal/orchestrate"
	"distrolabs/wslm/internal/tui/components"
	"distrolabs/wslm/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// snapshotRefreshEvery is how often the list picks up the background
// watcher's snapshot. A variable so tests can shorten it.
var snapshotRefreshEvery = 3 * time.Second

// --- Messages ---

// snapshotTickMsg tells the list to re-read the watcher's snapshot,
// which the background polling loop keeps current.
type snapshotTickMsg struct{}

type distrosLoadedMsg struct {
	distros []domain.Distribution
}

type distrosErrorMsg struct {
	err error
}

// trackerUpdateMsg carries a slot snapshot into the render loop. The
// tracker's observer sends one after every slot write.
type trackerUpdateMsg struct {
	snap orchestrate.Snapshot
}

// confirmRequestMsg is sent by the gate's confirm function from inside
// an action goroutine. The model renders the overlay and answers on
// reply (buffered, capacity 1).
type confirmRequestMsg struct {
	target domain.Distribution
	action domain.ActionID
	reply  chan bool
}

type actionDoneMsg struct {
	verb    string
	name    string
	outcome orchestrate.Outcome
	failed  bool
}

// --- Model ---

type distroListModel struct {
	client  backend.Client
	watcher *lifecycle.Watcher
	gate    *orchestrate.Gate

	distros []domain.Distribution
	cursor  int

	width  int
	height int

	loading bool
	busy    bool
	spinner spinner.Model
	err     error

	status        string
	statusIsError bool

	// persistentStatus survives the refresh that follows a completed
	// action.
	persistentStatus string

	// Stop confirmation overlay state.
	confirming bool
	pending    confirmRequestMsg

	quitting bool
}

// RunDistroApp starts the full-window distro list TUI. It owns the
// backend client, the lifecycle watcher, and the gate for the whole
// session.
func RunDistroApp() error {
	client := backend.NewWSL()
	watcher := lifecycle.NewWatcher(client)

	tracker := orchestrate.NewTracker()

	var prog *tea.Program

	confirm := func(ctx context.Context, target domain.Distribution, action domain.ActionID) (bool, error) {
		reply := make(chan bool, 1)
		prog.Send(confirmRequestMsg{target: target, action: action, reply: reply})
		select {
		case ok := <-reply:
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	gate := orchestrate.NewGate(tracker, watcher, confirm, orchestrate.StopSpec(client.Stop))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := distroListModel{
		client:  client,
		watcher: watcher,
		gate:    gate,
		loading: true,
		spinner: s,
	}

	prog = tea.NewProgram(m, tea.WithAltScreen())

	tracker.Notify(func(snap orchestrate.Snapshot) {
		prog.Send(trackerUpdateMsg{snap: snap})
	})

	// The watcher polls in the background for the whole session; the
	// list re-reads its snapshot on a timer so states stay current
	// without pressing r.
	pollCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(pollCtx)

	result, err := prog.Run()
	if err != nil {
		return fmt.Errorf("failed to run distro list: %w", err)
	}
	_ = result.(distroListModel)
	return nil
}

func (m distroListModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchDistros(),
		m.scheduleSnapshot(),
	)
}

func (m distroListModel) scheduleSnapshot() tea.Cmd {
	return tea.Tick(snapshotRefreshEvery, func(time.Time) tea.Msg {
		return snapshotTickMsg{}
	})
}

// fetchDistros refreshes the lifecycle snapshot and reads it back, so
// the list and the gate's StateReader always agree.
func (m distroListModel) fetchDistros() tea.Cmd {
	watcher := m.watcher
	return func() tea.Msg {
		if err := watcher.Refresh(context.Background()); err != nil {
			return distrosErrorMsg{err: err}
		}
		distros, _ := watcher.Snapshot()
		return distrosLoadedMsg{distros: distros}
	}
}

// --- Update ---

func (m distroListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case distrosLoadedMsg:
		m.loading = false
		m.distros = msg.distros
		m.err = nil
		if m.cursor >= len(m.distros) && len(m.distros) > 0 {
			m.cursor = len(m.distros) - 1
		}
		if m.persistentStatus != "" {
			m.status = m.persistentStatus
			m.statusIsError = false
			m.persistentStatus = ""
		} else if len(m.distros) == 0 {
			m.status = "No distributions found."
			m.statusIsError = false
		} else {
			m.status = fmt.Sprintf("%d distribution(s)", len(m.distros))
			m.statusIsError = false
		}
		return m, nil

	case distrosErrorMsg:
		m.loading = false
		m.err = msg.err
		m.status = ""
		m.statusIsError = false
		return m, nil

	case trackerUpdateMsg:
		// Progress slot drives the status bar while non-empty; at the
		// step boundary it goes briefly blank, and the error slot wins
		// once something failed.
		if msg.snap.ActionInProgress != "" {
			m.status = msg.snap.ActionInProgress
			m.statusIsError = false
		} else if msg.snap.Err != "" {
			m.status = msg.snap.Err
			m.statusIsError = true
		}
		return m, nil

	case snapshotTickMsg:
		// Quietly adopt the background watcher's snapshot when nothing
		// else owns the screen. Status text is left alone.
		if !m.loading && !m.busy && !m.confirming && m.watcher != nil {
			distros, _ := m.watcher.Snapshot()
			m.distros = distros
			if m.cursor >= len(m.distros) && len(m.distros) > 0 {
				m.cursor = len(m.distros) - 1
			}
		}
		return m, m.scheduleSnapshot()

	case confirmRequestMsg:
		m.confirming = true
		m.pending = msg
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case spinner.TickMsg:
		if m.loading || m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m distroListModel) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	switch msg.outcome {
	case orchestrate.OutcomeCancelled:
		m.status = "Cancelled."
		m.statusIsError = false
		return m, nil

	case orchestrate.OutcomeStopFailed:
		m.status = m.gate.Tracker().LastError()
		m.statusIsError = true
		return m, nil
	}

	if msg.failed {
		m.status = m.gate.Tracker().LastError()
		m.statusIsError = true
		return m, nil
	}

	m.loading = true
	m.persistentStatus = fmt.Sprintf("%s %q finished", msg.verb, msg.name)
	return m, tea.Batch(m.spinner.Tick, m.fetchDistros())
}

// --- Key handling ---

func (m distroListModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		return m.handleConfirmKey(msg)
	}

	if m.loading || m.busy {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.distros)-1 {
			m.cursor++
		}

	case "g":
		m.cursor = 0

	case "G":
		if len(m.distros) > 0 {
			m.cursor = len(m.distros) - 1
		}

	case "s":
		if len(m.distros) > 0 {
			return m.startToggle(m.distros[m.cursor])
		}

	case "c":
		if len(m.distros) > 0 {
			return m.startCompact(m.distros[m.cursor])
		}

	case "r":
		m.loading = true
		m.err = nil
		m.status = ""
		m.statusIsError = false
		return m, tea.Batch(m.spinner.Tick, m.fetchDistros())
	}

	return m, nil
}

func (m distroListModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.confirming = false
		m.pending.reply <- true
		m.pending = confirmRequestMsg{}
		return m, nil
	case "n", "esc", "q":
		m.confirming = false
		m.pending.reply <- false
		m.pending = confirmRequestMsg{}
		return m, nil
	case "ctrl+c":
		m.pending.reply <- false
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// --- Actions ---

// startToggle starts a stopped distribution or stops a live one.
// Neither direction carries a stop precondition, so the gate runs the
// spec immediately.
func (m distroListModel) startToggle(target domain.Distribution) (tea.Model, tea.Cmd) {
	var (
		action domain.ActionID
		verb   string
		spec   orchestrate.Spec[string, struct{}]
	)

	switch target.State {
	case domain.StateRunning:
		action = domain.ActionStop
		verb = "Stop"
		spec = orchestrate.Spec[string, struct{}]{
			Progress: func(name string) string { return "Stopping " + name + "..." },
			Operation: func(ctx context.Context, name string) (struct{}, error) {
				return struct{}{}, m.client.Stop(ctx, name)
			},
			Error: func(name string, cause error) string {
				return "Failed to stop " + name + ": " + cause.Error()
			},
		}
	case domain.StateStopped:
		action = domain.ActionStart
		verb = "Start"
		spec = orchestrate.Spec[string, struct{}]{
			Progress: func(name string) string { return "Starting " + name + "..." },
			Operation: func(ctx context.Context, name string) (struct{}, error) {
				return struct{}{}, m.client.Start(ctx, name)
			},
			Error: func(name string, cause error) string {
				return "Failed to start " + name + ": " + cause.Error()
			},
		}
	default:
		m.status = fmt.Sprintf("Cannot start/stop %q: state is %q", target.Name, target.State)
		m.statusIsError = true
		return m, nil
	}

	m.busy = true
	gate := m.gate
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, outcome := orchestrate.Invoke(context.Background(), gate, action, target, spec, target.Name)
		return actionDoneMsg{verb: verb, name: target.Name, outcome: outcome, failed: res == nil && outcome == orchestrate.OutcomeDone}
	})
}

// startCompact runs the guarded compact action. Against a live target
// the gate asks for confirmation first; the overlay is rendered when
// the confirm request arrives.
func (m distroListModel) startCompact(target domain.Distribution) (tea.Model, tea.Cmd) {
	client := m.client
	spec := orchestrate.Spec[string, struct{}]{
		Progress: func(name string) string { return "Compacting " + name + "..." },
		Operation: func(ctx context.Context, name string) (struct{}, error) {
			return struct{}{}, client.Compact(ctx, name)
		},
		Error: func(name string, cause error) string {
			return "Failed to compact " + name + ": " + cause.Error()
		},
	}

	m.busy = true
	m.status = ""
	m.statusIsError = false
	gate := m.gate
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, outcome := orchestrate.Invoke(context.Background(), gate, domain.ActionCompact, target, spec, target.Name)
		return actionDoneMsg{verb: "Compact", name: target.Name, outcome: outcome, failed: res == nil && outcome == orchestrate.OutcomeDone}
	})
}

// --- View ---

func (m distroListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "distros", "WSL")

	var footerBindings []components.KeyBinding
	if m.confirming {
		footerBindings = []components.KeyBinding{
			{Key: "y", Desc: "stop & continue"},
			{Key: "n", Desc: "cancel"},
		}
	} else if m.loading || m.busy {
		footerBindings = []components.KeyBinding{
			{Key: "ctrl+c", Desc: "quit"},
		}
	} else {
		footerBindings = []components.KeyBinding{
			{Key: "j/k", Desc: "navigate"},
			{Key: "s", Desc: "start/stop"},
			{Key: "c", Desc: "compact"},
			{Key: "r", Desc: "refresh"},
			{Key: "q", Desc: "quit"},
		}
	}
	footer := components.Footer(m.width, footerBindings)

	statusBar := ""
	if m.err != nil {
		statusBar = components.StatusBar(m.width, "Error: "+m.err.Error(), true)
	} else if m.status != "" {
		statusBar = components.StatusBar(m.width, m.status, m.statusIsError)
	}

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	statusH := lipgloss.Height(statusBar)
	contentH := m.height - headerH - footerH - statusH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	if m.confirming {
		content = m.renderConfirm(contentH)
	} else {
		content = m.renderContent(contentH)
	}

	sections := []string{header, content}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m distroListModel) renderConfirm(height int) string {
	target := m.pending.target
	action := m.pending.action

	question := styles.Title.Render(fmt.Sprintf("%q is running", target.Name))
	detail := styles.MutedText.Render(fmt.Sprintf(
		"The %s action needs the distribution stopped first.", action))
	choices := styles.KeyStyle.Render("y") + styles.MutedText.Render(" stop & continue   ") +
		styles.KeyStyle.Render("n") + styles.MutedText.Render(" cancel")

	card := styles.CardActive.Render(lipgloss.JoinVertical(lipgloss.Center,
		question, "", detail, "", choices))

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		card,
	)
}

func (m distroListModel) renderContent(height int) string {
	if m.loading {
		loadingText := m.spinner.View() + "  Refreshing distributions…"
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(loadingText),
		)
	}

	if m.err != nil {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.ErrorText.Render("Failed to load distributions"),
		)
	}

	if len(m.distros) == 0 {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No distributions registered."),
		)
	}

	return m.renderTable(height)
}

func (m distroListModel) renderTable(height int) string {
	type column struct {
		title string
		width int
	}

	available := m.width - 4 // 2 padding on each side

	cols := []column{
		{title: "NAME", width: 24},
		{title: "STATE", width: 16},
		{title: "VERSION", width: 9},
		{title: "DEFAULT", width: 9},
	}

	// Distribute remaining width to the NAME column.
	total := 0
	for _, c := range cols {
		total += c.width
	}
	if available > total {
		cols[0].width += available - total
	}

	headerCells := make([]string, len(cols))
	for i, col := range cols {
		headerCells[i] = styles.TableHeader.
			Width(col.width).
			Render(col.title)
	}
	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)

	sep := styles.MutedText.Render(strings.Repeat("─", available))

	visibleRows := height - 3 // header + sep + bottom padding
	if visibleRows < 1 {
		visibleRows = 1
	}

	// Scrolling: keep cursor visible.
	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(startIdx+visibleRows, len(m.distros))

	rows := make([]string, 0, visibleRows)
	for i := startIdx; i < endIdx; i++ {
		d := m.distros[i]
		isSelected := i == m.cursor

		def := ""
		if d.Default {
			def = "*"
		}

		values := []string{
			truncate(d.Name, cols[0].width-2),
			string(d.State),
			fmt.Sprintf("%d", d.Version),
			def,
		}

		cells := make([]string, 0, len(cols))
		for j, col := range cols {
			if col.title == "STATE" && !isSelected {
				cells = append(cells, styles.StateStyle(string(d.State)).
					Width(col.width).
					Padding(0, 1).
					Render(string(d.State)))
				continue
			}
			cellStyle := styles.TableCell.Width(col.width)
			if isSelected {
				cellStyle = styles.TableSelectedRow.Width(col.width)
			}
			cells = append(cells, cellStyle.Render(values[j]))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	for len(rows) < visibleRows {
		rows = append(rows, "")
	}

	table := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{headerRow, sep}, rows...)...,
	)

	return lipgloss.NewStyle().
		Padding(0, 2).
		Render(table)
}

// truncate shortens a string to fit the given width with an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-1] + "…"
}
