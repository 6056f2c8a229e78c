package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taskapp/internal/models"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var meta bool

	cmd := &cobra.Command{
		Use:     "show [task ID]",
		Short:   "Show task detail",
		Aliases: []string{"s"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			client, closeFn, err := connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			task, err := client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			writeDetail(cmd.OutOrStdout(), task, !meta)
			return nil
		},
	}
	cmd.Flags().BoolVar(&meta, "meta", false, "show only the task fields, not the description")
	return cmd
}

// writeDetail prints task fields and, when body is set, the description
// rendered as markdown.
func writeDetail(w io.Writer, task models.Task, body bool) {
	titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
	fieldStyle := color.New(color.FgHiGreen).SprintFunc()

	fmt.Fprintf(w, "[%v] %v\n", titleStyle(task.ID), titleStyle(task.Title))
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Status: %v\n", fieldStyle(statusOf(task)))
	fmt.Fprintf(w, "Created at: %v\n", fieldStyle(task.CreatedAt.Local().Format(timeLayout)))
	if task.CompletedAt != nil {
		fmt.Fprintf(w, "Completed at: %v\n", fieldStyle(task.CompletedAt.Local().Format(timeLayout)))
	}
	if task.DeletedAt != nil {
		fmt.Fprintf(w, "Deleted at: %v\n", fieldStyle(task.DeletedAt.Local().Format(timeLayout)))
	}

	if !body || task.Description == "" {
		return
	}
	rendered, err := glamour.Render(task.Description, "dark")
	if err != nil {
		fmt.Fprintln(w, task.Description)
		return
	}
	fmt.Fprint(w, rendered)
}
