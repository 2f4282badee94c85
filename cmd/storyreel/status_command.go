package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon reachability and active projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := client.Health(cmd.Context()); err != nil {
				fmt.Fprintln(out, "Daemon: not reachable")
				return err
			}
			fmt.Fprintln(out, "Daemon: running")

			projects, err := client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			active := 0
			colorize := stdoutIsTerminal()
			rows := make([][]string, 0, len(projects))
			for _, project := range projects {
				if project.Status == "completed" {
					continue
				}
				active++
				rows = append(rows, []string{
					project.ID,
					project.Name,
					colorizeStatus(project.Status, colorize),
					strconv.Itoa(project.SegmentCount),
				})
			}
			if active == 0 {
				fmt.Fprintln(out, "No active projects")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Status", "Segments"}, rows))
			return nil
		},
	}
}
