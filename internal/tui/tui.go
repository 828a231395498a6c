// Package tui provides a terminal user interface over the query cache,
// mutation coordinator and view model. It is a thin adapter: all task
// logic lives in those packages.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasksgo/backend"
	"tasksgo/internal/mutation"
	"tasksgo/internal/notification"
	"tasksgo/internal/queries"
	"tasksgo/internal/views"
)

// Mode indicates the current input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeFilter
	ModeHelp
	ModeConfirmDelete
)

// Model represents the TUI state.
type Model struct {
	cache *queries.Cache
	coord *mutation.Coordinator
	notes <-chan notification.Notification
	ctx   context.Context

	// Data
	view       backend.View
	projection views.Projection
	tasks      []backend.Task
	rows       []views.Row
	today      time.Time

	// Selection
	cursor int

	// Mode and input
	mode      Mode
	textInput textinput.Model
	editing   *backend.Task // task under edit/delete confirmation
	pending   bool          // a mutation is in flight

	// Transient status line
	status    string
	statusErr bool

	// UI dimensions
	width  int
	height int

	// Styles
	headerStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	doneStyle     lipgloss.Style
	dueStyle      lipgloss.Style
	statusStyle   lipgloss.Style
	errorStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	dialogStyle   lipgloss.Style
}

// Message types
type tasksLoadedMsg struct {
	view  backend.View
	tasks []backend.Task
}

type mutationDoneMsg struct {
	outcome mutation.Outcome
}

type notificationMsg struct {
	note notification.Notification
}

type errMsg struct {
	err error
}

// New creates a new TUI model. notes receives the coordinator's
// outcome notifications; pass nil to show no status messages.
func New(cache *queries.Cache, coord *mutation.Coordinator, notes <-chan notification.Notification, view backend.View, projection views.Projection) *Model {
	ti := textinput.New()
	ti.Placeholder = "task text #tag @2006-01-02"
	ti.CharLimit = 256

	return &Model{
		cache:      cache,
		coord:      coord,
		notes:      notes,
		ctx:        context.Background(),
		view:       view,
		projection: projection,
		today:      time.Now(),
		textInput:  ti,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		doneStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		dueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// Init loads the initial view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasks(), m.waitForNote())
}

// loadTasks fetches the current view through the query cache.
func (m *Model) loadTasks() tea.Cmd {
	view := m.view
	return func() tea.Msg {
		tasks, err := m.cache.Get(m.ctx, view)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{view: view, tasks: tasks}
	}
}

// perform runs one mutation through the coordinator.
func (m *Model) perform(a mutation.Action) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{outcome: m.coord.Perform(m.ctx, a)}
	}
}

// waitForNote blocks on the notification channel.
func (m *Model) waitForNote() tea.Cmd {
	if m.notes == nil {
		return nil
	}
	return func() tea.Msg {
		note, ok := <-m.notes
		if !ok {
			return nil
		}
		return notificationMsg{note: note}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		if msg.view != m.view {
			// Torn-down view; discard the stale result.
			return m, nil
		}
		m.tasks = msg.tasks
		m.reproject()
		return m, nil

	case mutationDoneMsg:
		m.pending = false
		if msg.outcome.Succeeded() {
			// Invalidation already happened inside the coordinator;
			// this read refetches.
			return m, m.loadTasks()
		}
		return m, nil

	case notificationMsg:
		m.status = msg.note.Message
		m.statusErr = msg.note.Type == notification.NotifyError
		return m, m.waitForNote()

	case errMsg:
		m.status = msg.err.Error()
		m.statusErr = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "tab":
		m.view = nextView(m.view)
		m.cursor = 0
		return m, m.loadTasks()

	case "r":
		m.cache.Invalidate(m.view)
		return m, m.loadTasks()

	case "s":
		if m.projection.Sort == views.SortDesc {
			m.projection.Sort = views.SortAsc
		} else {
			m.projection.Sort = views.SortDesc
		}
		m.reproject()

	case "a":
		m.mode = ModeAdd
		m.textInput.SetValue("")
		m.textInput.Focus()
		return m, textinput.Blink

	case "e":
		if t := m.selectedTask(); t != nil {
			m.mode = ModeEdit
			m.editing = t
			m.textInput.SetValue(FormatEntry(*t))
			m.textInput.Focus()
			return m, textinput.Blink
		}

	case "d", " ":
		if t := m.selectedTask(); t != nil && !m.pending {
			m.pending = true
			return m, m.perform(mutation.ToggleDone(*t))
		}

	case "x", "delete":
		if t := m.selectedTask(); t != nil {
			m.mode = ModeConfirmDelete
			m.editing = t
		}

	case "/":
		m.mode = ModeFilter
		m.textInput.SetValue(m.projection.Tag)
		m.textInput.Focus()
		return m, textinput.Blink

	case "?":
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil

	case ModeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			t := m.editing
			m.mode = ModeNormal
			m.editing = nil
			if t != nil && !m.pending {
				m.pending = true
				return m, m.perform(mutation.Delete(t.ID))
			}
		case "n", "esc":
			m.mode = ModeNormal
			m.editing = nil
		}
		return m, nil
	}

	// Text-input modes: add, edit, filter.
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.editing = nil
		m.textInput.Blur()
		return m, nil

	case "enter":
		return m.submitDialog()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// submitDialog applies the text-input value for the current mode.
func (m *Model) submitDialog() (tea.Model, tea.Cmd) {
	value := m.textInput.Value()

	switch m.mode {
	case ModeFilter:
		m.projection.Tag = strings.TrimSpace(value)
		m.mode = ModeNormal
		m.textInput.Blur()
		m.reproject()
		return m, nil

	case ModeAdd:
		draft, err := ParseEntry(value)
		if err != nil {
			// Validation errors stay inline next to the input and
			// never reach the network.
			m.status = err.Error()
			m.statusErr = true
			return m, nil
		}
		m.mode = ModeNormal
		m.textInput.Blur()
		m.textInput.SetValue("")
		m.pending = true
		return m, m.perform(mutation.Create(draft))

	case ModeEdit:
		t := m.editing
		draft, err := ParseEntry(value)
		if err != nil {
			m.status = err.Error()
			m.statusErr = true
			return m, nil
		}
		m.mode = ModeNormal
		m.editing = nil
		m.textInput.Blur()
		m.textInput.SetValue("")
		if t != nil {
			draft.Done = t.Done
			m.pending = true
			return m, m.perform(mutation.Edit(t.ID, draft))
		}
	}

	m.mode = ModeNormal
	return m, nil
}

// reproject recomputes the presentation rows from the raw tasks.
func (m *Model) reproject() {
	m.rows = views.Project(m.tasks, m.projection)
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

// selectedTask returns the raw task behind the cursor row, or nil.
func (m *Model) selectedTask() *backend.Task {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	id := m.rows[m.cursor].ID
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i]
		}
	}
	return nil
}

func nextView(v backend.View) backend.View {
	switch v {
	case backend.ViewTodo:
		return backend.ViewDone
	case backend.ViewDone:
		return backend.ViewAll
	default:
		return backend.ViewTodo
	}
}

// View renders the UI.
func (m *Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("TasksGo — %s (%d tasks)", m.view, len(m.rows))
	if m.projection.Tag != "" {
		title += fmt.Sprintf(" — tag: %s", m.projection.Tag)
	}
	if m.pending {
		title += " …"
	}
	b.WriteString(m.headerStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.helpStyle.Render("No tasks. Press 'a' to add one."))
		b.WriteString("\n")
	}

	for i, row := range m.rows {
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	switch m.mode {
	case ModeAdd:
		b.WriteString("\n" + m.dialogStyle.Render("New task\n"+m.textInput.View()))
	case ModeEdit:
		b.WriteString("\n" + m.dialogStyle.Render("Edit task\n"+m.textInput.View()))
	case ModeFilter:
		b.WriteString("\n" + m.dialogStyle.Render("Filter by tag\n"+m.textInput.View()))
	case ModeConfirmDelete:
		if m.editing != nil {
			b.WriteString("\n" + m.dialogStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.editing.Text)))
		}
	case ModeHelp:
		b.WriteString("\n" + m.dialogStyle.Render(helpText))
	}

	b.WriteString("\n")
	if m.status != "" {
		style := m.statusStyle
		if m.statusErr {
			style = m.errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.helpStyle.Render("a:add e:edit d:done x:delete /:filter s:sort tab:view r:refresh ?:help q:quit"))

	return b.String()
}

func (m *Model) renderRow(i int, row views.Row) string {
	check := "[ ]"
	if row.Done {
		check = "[✓]"
	}

	line := fmt.Sprintf("%s %s", check, row.Text)
	if tags := row.TagsLabel(); tags != "" {
		line += "  " + m.helpStyle.Render(tags)
	}
	if due := row.DueLabel(m.today); due != "" {
		line += "  " + m.dueStyle.Render(due)
	}

	switch {
	case i == m.cursor:
		return m.selectedStyle.Render("> " + line)
	case row.Done:
		return "  " + m.doneStyle.Render(line)
	default:
		return "  " + line
	}
}

const helpText = `Keys
  j/k, arrows  move
  a            add task (text #tag @YYYY-MM-DD)
  e            edit selected task
  d, space     toggle done
  x, delete    delete (with confirmation)
  /            filter by tag
  s            flip due-date sort
  tab          cycle view (todo/done/all)
  r            refresh current view
  q            quit

Press any key to close.`
