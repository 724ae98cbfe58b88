package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive terminal view of the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		m := newBoardModel(cmd.Context(), services.Tasks.ListTasks)
		if os.Getenv("KANBAN_SKIP_BOARD_RUN") == "true" {
			fmt.Println(m.View())
			return nil
		}
		p := tea.NewProgram(m)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type listFunc func(ctx context.Context, status board.Status) ([]board.Task, error)

type boardLoadedMsg struct {
	tasks []board.Task
	err   error
}

type boardModel struct {
	ctx   context.Context
	list  listFunc
	table table.Model
	tasks []board.Task
	err   error
}

func newBoardModel(ctx context.Context, list listFunc) boardModel {
	columns := []table.Column{
		{Title: "Status", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Task", Width: 40},
		{Title: "Agent", Width: 12},
		{Title: "ID", Width: 32},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithWidth(120),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m := boardModel{ctx: ctx, list: list, table: t}
	return m.apply(m.load())
}

func (m boardModel) load() boardLoadedMsg {
	tasks, err := m.list(m.ctx, "")
	return boardLoadedMsg{tasks: tasks, err: err}
}

func (m boardModel) apply(msg boardLoadedMsg) boardModel {
	m.err = msg.err
	if msg.err != nil {
		return m
	}
	m.tasks = msg.tasks
	m.table.SetRows(boardRows(msg.tasks))
	return m
}

// boardRows orders tasks by column, keeping creation order inside a column.
func boardRows(tasks []board.Task) []table.Row {
	rows := []table.Row{}
	for _, st := range board.AllStatuses() {
		for _, t := range tasks {
			if t.Status != st {
				continue
			}
			title := t.Title
			if t.IsLinked() {
				title += " " + linkedMarker
			}
			rows = append(rows, table.Row{string(t.Status), string(t.Priority), title, t.Agent, t.ID})
		}
	}
	return rows
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		return m.apply(msg), nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, func() tea.Msg { return m.load() }
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error loading board: %v", m.err)) + "\nPress r to retry, q to quit."
	}

	counts := make([]string, 0, len(board.AllStatuses()))
	for _, st := range board.AllStatuses() {
		n := 0
		for _, t := range m.tasks {
			if t.Status == st {
				n++
			}
		}
		counts = append(counts, fmt.Sprintf("%s %d", st, n))
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Kanban"),
			strings.Join(counts, " · "),
			m.table.View(),
			helpStyle.Render("r refresh · q quit"),
		),
	)
}
