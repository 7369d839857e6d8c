package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	chatSave     bool
	chatPageSize int
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 1)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusBadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusWaitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	caretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	diagStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type revealTickMsg time.Time
type caretTickMsg time.Time
type healthTickMsg time.Time

// answerMsg carries one normalized backend reply, tagged with the thread
// the question was asked from so replies land there even after a switch.
type answerMsg struct {
	threadID string
	msg      internal.Message
}

type healthResultMsg internal.BackendStatus

// tableView is the presentation state for the latest table in the current
// thread. It resets on thread switch and on every new answer.
type tableView struct {
	sort   internal.SortState
	search string
	page   int
}

type chatModel struct {
	cfg     internal.Config
	client  *internal.Client
	store   *internal.Store
	history *internal.History

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	status    internal.BackendStatus
	waiting   bool
	filtering bool
	showDiag  bool
	caretOn   bool

	// seq animates the newest assistant message of seqThread; nil when no
	// animation is running.
	seq       *internal.Sequencer
	seqThread string

	table tableView

	width  int
	height int
	ready  bool
}

func newChatModel(cfg internal.Config, history *internal.History) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about your data..."
	input.Focus()
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))

	return chatModel{
		cfg:     cfg,
		client:  cfg.NewBackendClient(),
		store:   internal.NewStore(),
		history: history,
		input:   input,
		spinner: sp,
		status:  internal.StatusChecking,
		table:   tableView{page: 1},
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.healthCmd(),
		tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return healthTickMsg(t) }),
		tea.Tick(internal.CaretBlinkInterval, func(t time.Time) tea.Msg { return caretTickMsg(t) }),
	)
}

func (m chatModel) healthCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, _ := client.Health(ctx)
		return healthResultMsg(status)
	}
}

// askCmd sends the question and delivers the reply tagged with the thread
// it came from.
func (m chatModel) askCmd(threadID, question string) tea.Cmd {
	client := m.client
	opts := m.cfg.QueryOptions()
	return func() tea.Msg {
		return answerMsg{
			threadID: threadID,
			msg:      client.Ask(context.Background(), question, opts),
		}
	}
}

func revealTick() tea.Cmd {
	return tea.Tick(internal.DefaultTypingInterval, func(t time.Time) tea.Msg {
		return revealTickMsg(t)
	})
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chrome := 4 // header, input, footer, spacing
		m.viewport = viewport.New(msg.Width, msg.Height-chrome)
		m.ready = true
		m.refreshView()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case healthTickMsg:
		cmds = append(cmds,
			m.healthCmd(),
			tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return healthTickMsg(t) }))
		return m, tea.Batch(cmds...)

	case healthResultMsg:
		m.status = internal.BackendStatus(msg)
		return m, nil

	case caretTickMsg:
		m.caretOn = !m.caretOn
		if m.seq != nil {
			m.refreshView()
		}
		return m, tea.Tick(internal.CaretBlinkInterval, func(t time.Time) tea.Msg {
			return caretTickMsg(t)
		})

	case revealTickMsg:
		if m.seq == nil {
			return m, nil
		}
		done := m.seq.Advance()
		m.refreshView()
		if done {
			m.seq = nil
			m.seqThread = ""
			return m, nil
		}
		return m, revealTick()

	case answerMsg:
		m.store.AppendMessage(msg.threadID, msg.msg)
		m.archive(msg.threadID)
		if msg.threadID == m.store.CurrentID() {
			m.waiting = false
			m.table = tableView{page: 1}
			m.seq = internal.NewSequencer(msg.msg.Content)
			m.seqThread = msg.threadID
			m.refreshView()
			m.viewport.GotoBottom()
			return m, revealTick()
		}
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.filtering {
			// first esc leaves filter mode and clears the filter
			m.filtering = false
			m.table.search = ""
			m.table.page = 1
			m.input.Placeholder = "Ask about your data..."
			m.input.SetValue("")
			m.refreshView()
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+n":
		m.store.CreateThread()
		m.dropAnimation()
		m.table = tableView{page: 1}
		m.showDiag = false
		m.refreshView()
		return m, nil

	case "tab":
		m.store.CycleCurrent()
		m.dropAnimation()
		m.table = tableView{page: 1}
		m.showDiag = false
		m.refreshView()
		return m, nil

	case "ctrl+d":
		m.showDiag = !m.showDiag
		m.refreshView()
		return m, nil

	case "ctrl+f":
		m.filtering = true
		m.input.Placeholder = "Filter rows..."
		m.input.SetValue(m.table.search)
		m.refreshView()
		return m, nil

	case "ctrl+s":
		m.cycleSort()
		m.refreshView()
		return m, nil

	case "pgdown":
		if m.currentTable() == nil {
			return m, nil
		}
		m.table.page++
		if _, err := m.presentCurrent(); err != nil {
			m.table.page--
		}
		m.refreshView()
		return m, nil

	case "pgup":
		if m.table.page > 1 {
			m.table.page--
		}
		m.refreshView()
		return m, nil

	case "enter":
		return m.handleEnter()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.filtering {
		m.table.search = m.input.Value()
		m.table.page = 1
		m.refreshView()
	}
	return m, cmd
}

func (m chatModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.filtering {
		m.table.search = m.input.Value()
		m.table.page = 1
		m.filtering = false
		m.input.Placeholder = "Ask about your data..."
		m.input.SetValue("")
		m.refreshView()
		return m, nil
	}

	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.waiting {
		return m, nil
	}
	if m.status == internal.StatusError {
		// submissions are gated while the backend is down; re-probe so the
		// header recovers as soon as it comes back
		return m, m.healthCmd()
	}

	threadID := m.store.CurrentID()
	m.store.RenameOnFirstMessage(threadID, question)
	m.store.AppendMessage(threadID, internal.NewUserMessage(question))
	m.archive(threadID)

	m.input.SetValue("")
	m.waiting = true
	m.dropAnimation()
	m.table = tableView{page: 1}
	m.refreshView()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.askCmd(threadID, question), m.spinner.Tick)
}

// dropAnimation abandons a running reveal. The message content is already
// in the store, so the next render shows it in full.
func (m *chatModel) dropAnimation() {
	m.seq = nil
	m.seqThread = ""
}

func (m *chatModel) archive(threadID string) {
	if m.history == nil {
		return
	}
	if err := m.history.SaveThread(m.store.Thread(threadID)); err != nil {
		internal.LogError("archive thread: %v", err)
	}
}

// cycleSort steps the sort state through each column ascending, then
// descending, then back to unsorted.
func (m *chatModel) cycleSort() {
	table := m.currentTable()
	if table == nil {
		return
	}
	cols := internal.Columns(table.Rows, table.Columns)
	if len(cols) == 0 {
		return
	}

	if m.table.sort.Key == "" {
		m.table.sort = internal.SortState{Key: cols[0]}
	} else if !m.table.sort.Desc {
		m.table.sort = internal.ToggleSort(m.table.sort, m.table.sort.Key)
	} else {
		next := ""
		for i, col := range cols {
			if col == m.table.sort.Key && i+1 < len(cols) {
				next = cols[i+1]
				break
			}
		}
		m.table.sort = internal.SortState{Key: next}
	}
	m.table.page = 1
}

// currentTable returns the latest assistant table in the current thread
func (m *chatModel) currentTable() *internal.TablePayload {
	thread := m.store.Current()
	for i := len(thread.Messages) - 1; i >= 0; i-- {
		msg := thread.Messages[i]
		if msg.Role == internal.RoleAssistant && msg.Table != nil {
			return msg.Table
		}
	}
	return nil
}

func (m *chatModel) presentCurrent() (internal.PagedRows, error) {
	table := m.currentTable()
	if table == nil {
		return internal.PagedRows{}, nil
	}
	return internal.Present(table.Rows, internal.PresentOptions{
		Sort:     m.table.sort,
		Search:   m.table.search,
		Page:     m.table.page,
		PageSize: chatPageSize,
	})
}

func (m *chatModel) refreshView() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
}

func (m chatModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m chatModel) renderHeader() string {
	thread := m.store.Current()

	var status string
	switch m.status {
	case internal.StatusConnected:
		status = statusOKStyle.Render("● connected")
	case internal.StatusError:
		status = statusBadStyle.Render("● backend unreachable")
	default:
		status = statusWaitStyle.Render("● checking...")
	}

	title := headerStyle.Render("DataWare Chat") + " " + thread.Title
	count := footerStyle.Render(fmt.Sprintf("(%d threads)", len(m.store.Threads())))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(count) - lipgloss.Width(status) - 3
	if gap < 1 {
		gap = 1
	}
	return title + " " + count + strings.Repeat(" ", gap) + status
}

func (m chatModel) renderInput() string {
	if m.waiting {
		return m.spinner.View() + " thinking..."
	}
	if m.filtering {
		return filterStyle.Render("filter:") + " " + m.input.View()
	}
	return "> " + m.input.View()
}

func (m chatModel) renderFooter() string {
	keys := "enter send · ctrl+n new thread · tab switch · ctrl+d details · ctrl+c quit"
	if m.currentTable() != nil {
		keys = "pgup/pgdn page · ctrl+s sort · ctrl+f filter · " + keys
	}
	return footerStyle.Render(keys)
}

func (m chatModel) renderConversation() string {
	thread := m.store.Current()
	if len(thread.Messages) == 0 {
		return footerStyle.Render("\n  Ask a question about your data warehouse to get started.\n")
	}

	var b strings.Builder
	for i, msg := range thread.Messages {
		last := i == len(thread.Messages)-1
		switch msg.Role {
		case internal.RoleUser:
			b.WriteString(userLabelStyle.Render("You") + "  " + msg.Content + "\n\n")
		case internal.RoleAssistant:
			b.WriteString(botLabelStyle.Render("Assistant") + "\n")
			if last && m.seq != nil && m.seqThread == thread.ID && !m.seq.Revealed() {
				// payload and diagnostics stay hidden until the reveal ends
				caret := " "
				if m.caretOn {
					caret = caretStyle.Render("▋")
				}
				b.WriteString("  " + m.seq.Visible() + caret + "\n\n")
				continue
			}
			b.WriteString("  " + msg.Content + "\n")
			b.WriteString(m.renderBody(msg, last))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderBody renders the structured payload of a revealed assistant
// message. Table state (sort, filter, page) only applies to the latest
// message; older tables render their first page untouched.
func (m chatModel) renderBody(msg internal.Message, last bool) string {
	var b strings.Builder

	switch msg.ResultType {
	case internal.ResultText:
		if msg.Text != nil && msg.Text.Value != "" {
			b.WriteString("  " + valueStyle.Render(msg.Text.Value) + "\n")
		}
	case internal.ResultChart:
		if msg.Chart != nil {
			b.WriteString(indent(internal.RenderChart(msg.Chart, m.width-6), 2) + "\n")
		}
	case internal.ResultTable:
		if msg.Table != nil {
			view := m.table
			if !last {
				view = tableView{page: 1}
			}
			b.WriteString(m.renderTable(msg.Table, view))
		}
	}

	for _, insight := range msg.Insights {
		b.WriteString("  • " + insight + "\n")
	}

	// the detail panel only exists for resolvable turns; unresolvable ones
	// carry diagnostics internally but never show them
	if m.showDiag && last && msg.Resolvable && !msg.Diagnostics.Empty() {
		b.WriteString(indent(diagStyle.Render(renderDiagText(msg.Diagnostics)), 2) + "\n")
	}
	return b.String()
}

func (m chatModel) renderTable(table *internal.TablePayload, view tableView) string {
	page, err := internal.Present(table.Rows, internal.PresentOptions{
		Sort:     view.sort,
		Search:   view.search,
		Page:     view.page,
		PageSize: chatPageSize,
	})
	if err != nil {
		return "  " + statusBadStyle.Render(err.Error()) + "\n"
	}

	cols := internal.Columns(table.Rows, table.Columns)
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)

	head := make([]string, len(cols))
	for i, col := range cols {
		label := col
		if col == view.sort.Key {
			if view.sort.Desc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		head[i] = label
	}
	fmt.Fprintln(w, strings.Join(head, "\t")+"\t")

	for _, row := range page.Rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = internal.Cell(row, col)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	w.Flush()

	out := indent(buf.String(), 2)

	footer := fmt.Sprintf("page %d/%d · %d row(s)", view.page, page.TotalPages, page.TotalFiltered)
	if view.search != "" {
		footer += fmt.Sprintf(" · filter %q", view.search)
	}
	return out + indent(footerStyle.Render(footer), 2) + "\n"
}

func renderDiagText(d *internal.Diagnostics) string {
	var b strings.Builder
	if d.GeneratedQuery != "" {
		b.WriteString(d.GeneratedQuery + "\n")
	}
	for _, step := range d.WorkflowSteps {
		glyph := "✓"
		if step.Status == internal.StepFailed {
			glyph = "✗"
		} else if step.Status == internal.StepPending {
			glyph = "…"
		}
		b.WriteString(fmt.Sprintf("%s %s (%.3fs)", glyph, step.Name, step.DurationSeconds))
		if step.Error != "" {
			b.WriteString(" " + step.Error)
		}
		b.WriteString("\n")
	}
	if d.Retry != nil {
		b.WriteString("retried after correction:\n")
		b.WriteString("  original:  " + d.Retry.OriginalQuery + "\n")
		b.WriteString("  corrected: " + d.Retry.CorrectedQuery + "\n")
	}
	if d.ExecutionSeconds > 0 {
		b.WriteString(fmt.Sprintf("execution time: %.3fs", d.ExecutionSeconds))
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n") + "\n"
}

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive terminal chat with the query backend.

Each answer is revealed with a typing animation; charts, tables and the
diagnostics panel appear once the text has finished. Table answers can be
paged, sorted and filtered in place.

Key bindings:
  enter        send question / apply filter
  ctrl+n       start a new thread
  tab          cycle through threads
  ctrl+d       toggle the diagnostics panel
  ctrl+s       cycle table sort (each column asc, then desc)
  ctrl+f       filter table rows (esc clears)
  pgup/pgdn    page through table rows
  ctrl+c       quit

With --save, every turn is archived to the local history database for
'history list' and 'export'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var history *internal.History
		if chatSave {
			path, err := internal.DefaultHistoryPath()
			if err != nil {
				return err
			}
			history, err = internal.OpenHistory(path)
			if err != nil {
				return err
			}
			defer history.Close()
		}

		p := tea.NewProgram(newChatModel(cfg, history), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat session failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatSave, "save", false, "Archive the conversation to the local history database")
	chatCmd.Flags().IntVar(&chatPageSize, "page-size", 10, "Rows per page for table results")
}
