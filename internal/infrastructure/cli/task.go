package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/kanban/pkg/application"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/spf13/cobra"
)

const linkedMarker = "⧉"

var listJSON bool

var (
	columnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	// Keyed by priority, matching the badge colours of the web board.
	priorityStyles = map[board.Priority]lipgloss.Style{
		board.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		board.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		board.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

var listCmd = &cobra.Command{
	Use:   "list [status]",
	Short: "List tasks grouped by column",
	Long: `List tasks grouped by column in board order.

Pass a status to show a single column. Linked tasks, whose review is mirrored
to the remote list, are marked with ` + linkedMarker + `.

Examples:
  kanban list
  kanban list Review
  kanban list "In Progress" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var createCmd = &cobra.Command{
	Use:   "create <title> <description> <priority> <status> [tags] [agent]",
	Short: "Create a task",
	Long: `Create a task. Tags are comma separated.

A task created directly in Review is mirrored to the remote review list.

Examples:
  kanban create "Fix login" "Session expires too early" High Backlog
  kanban create "Docs" "Write the API guide" Low Review docs,api alice`,
	Args: cobra.RangeArgs(4, 6),
	RunE: runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update <id> <field> <value>",
	Short: "Update a single field of a task",
	Long: `Update a single field of a task.

Fields: title, description, priority, status, tags, agent, blockReason.
The id may be any unique prefix of the task id.`,
	Args: cobra.ExactArgs(3),
	RunE: runUpdate,
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, []string{args[0], "status", args[1]})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a task as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runList(cmd *cobra.Command, args []string) error {
	var status board.Status
	if len(args) == 1 {
		parsed, err := board.ParseStatus(args[0])
		if err != nil {
			return MapError(err)
		}
		status = parsed
	}

	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	tasks, err := services.Tasks.ListTasks(cmd.Context(), status)
	if err != nil {
		return MapError(fmt.Errorf("list tasks: %w", err))
	}

	if listJSON {
		return printJSON(tasks)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	for _, st := range board.AllStatuses() {
		var column []board.Task
		for _, t := range tasks {
			if t.Status == st {
				column = append(column, t)
			}
		}
		if len(column) == 0 {
			continue
		}
		fmt.Println(columnStyle.Render(fmt.Sprintf("%s (%d)", st, len(column))))
		for i := range column {
			fmt.Println("  " + formatTaskLine(&column[i]))
		}
	}
	return nil
}

func formatTaskLine(t *board.Task) string {
	var b strings.Builder
	b.WriteString(priorityStyles[t.Priority].Render(fmt.Sprintf("[%s]", t.Priority)))
	b.WriteString(" ")
	b.WriteString(t.Title)
	b.WriteString(" ")
	b.WriteString(idStyle.Render(t.ID))
	if t.Agent != "" {
		fmt.Fprintf(&b, " @%s", t.Agent)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, " #%s", strings.Join(t.Tags, " #"))
	}
	if t.IsLinked() {
		b.WriteString(" " + linkedMarker)
	}
	if t.Status == board.StatusBlocked && t.BlockReason != "" {
		fmt.Fprintf(&b, " (blocked: %s)", t.BlockReason)
	}
	return b.String()
}

func runCreate(cmd *cobra.Command, args []string) error {
	in := board.TaskInput{
		Title:       args[0],
		Description: args[1],
		Priority:    board.Priority(args[2]),
		Status:      board.Status(args[3]),
	}
	if len(args) > 4 {
		in.Tags = splitTags(args[4])
	}
	if len(args) > 5 {
		in.Agent = args[5]
	}

	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	res, err := services.Tasks.CreateTask(cmd.Context(), in)
	if err != nil {
		return MapError(fmt.Errorf("create task: %w", err))
	}

	fmt.Printf("Created task %s in %s.\n", res.Task.ID, res.Task.Status)
	printSyncNote(res.Sync)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	patch, err := fieldPatch(args[1], args[2])
	if err != nil {
		return MapError(err)
	}

	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	task, err := services.Tasks.ResolveTask(cmd.Context(), args[0])
	if err != nil {
		return MapError(err)
	}
	res, err := services.Tasks.UpdateTask(cmd.Context(), task.ID, patch)
	if err != nil {
		return MapError(fmt.Errorf("update task: %w", err))
	}

	fmt.Printf("Updated task %s (%s).\n", res.Task.ID, res.Task.Status)
	printSyncNote(res.Sync)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	task, err := services.Tasks.ResolveTask(cmd.Context(), args[0])
	if err != nil {
		return MapError(err)
	}
	return printJSON(task)
}

// fieldPatch builds a single-field patch from the update command arguments.
func fieldPatch(field, value string) (board.TaskPatch, error) {
	var patch board.TaskPatch
	switch field {
	case "title":
		patch.Title = &value
	case "description":
		patch.Description = &value
	case "priority":
		p, err := board.ParsePriority(value)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	case "status":
		s, err := board.ParseStatus(value)
		if err != nil {
			return patch, err
		}
		patch.Status = &s
	case "tags":
		tags := splitTags(value)
		patch.Tags = &tags
	case "agent":
		patch.Agent = &value
	case "blockReason":
		patch.BlockReason = &value
	default:
		return patch, &board.ValidationError{
			Fields: []string{field},
			Reason: "unknown field, expected one of title, description, priority, status, tags, agent, blockReason",
		}
	}
	return patch, nil
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func printSyncNote(o application.SyncOutcome) {
	switch {
	case o.Action == board.SyncNone:
	case o.OK():
		fmt.Printf("Review list: %s done.\n", o.Action)
	case o.Skipped():
		fmt.Printf("Review list: %s skipped (%v).\n", o.Action, o.Err)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(listCmd, createCmd, updateCmd, moveCmd, showCmd)
}
