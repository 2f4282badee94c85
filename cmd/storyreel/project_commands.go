package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/orchestrator"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage narrated video projects",
	}

	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectPlanCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))

	return projectCmd
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	var name string
	var storyPrompt string
	var targetSeconds int
	var segmentSeconds int
	var voiceID string
	var seedFrame string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			project, err := client.CreateProject(cmd.Context(), orchestrator.CreateProjectRequest{
				Name:           name,
				StoryPrompt:    storyPrompt,
				TargetSeconds:  targetSeconds,
				SegmentSeconds: segmentSeconds,
				VoiceID:        voiceID,
				SeedFrame:      seedFrame,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s (%s)\n", project.Name, project.ID)
			fmt.Fprintf(out, "Segments: %d x %ds\n", project.SegmentCount, project.SegmentSeconds)
			fmt.Fprintf(out, "Run `storyreel project plan %s` to generate segment prompts.\n", project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&storyPrompt, "prompt", "", "Story concept for the planner")
	cmd.Flags().IntVar(&targetSeconds, "target", 0, "Total video duration in seconds")
	cmd.Flags().IntVar(&segmentSeconds, "segment-seconds", 6, "Duration of each segment (6 or 10)")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Narration voice identifier")
	cmd.Flags().StringVar(&seedFrame, "seed-frame", "", "Image file used as the first frame of segment 0")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("seed-frame")
	return cmd
}

func newProjectPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <project-id>",
		Short: "Generate segment prompts for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.GeneratePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Plan generated; review segment prompts with `storyreel project show`.")
			return nil
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			projects, err := client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			colorize := stdoutIsTerminal()
			rows := make([][]string, 0, len(projects))
			for _, project := range projects {
				rows = append(rows, []string{
					project.ID,
					project.Name,
					colorizeStatus(project.Status, colorize),
					fmt.Sprintf("%ds", project.TargetSeconds),
					strconv.Itoa(project.SegmentCount),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Status", "Target", "Segments"}, rows))
			return nil
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			snapshot, err := client.Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := stdoutIsTerminal()
			project := snapshot.Project
			fmt.Fprintf(out, "Project: %s (%s)\n", project.Name, project.ID)
			fmt.Fprintf(out, "Status:  %s\n", colorizeStatus(project.Status, colorize))
			fmt.Fprintf(out, "Layout:  %d x %ds = %ds\n", project.SegmentCount, project.SegmentSeconds, project.TargetSeconds)
			if project.FinalVideo != "" {
				fmt.Fprintf(out, "Final:   %s\n", project.FinalVideo)
			}
			if project.PublishedURL != "" {
				fmt.Fprintf(out, "URL:     %s\n", project.PublishedURL)
			}
			if project.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", project.ErrorMessage)
			}

			rows := make([][]string, 0, len(snapshot.Segments))
			for _, segment := range snapshot.Segments {
				rows = append(rows, []string{
					strconv.Itoa(segment.Index),
					colorizeStatus(segment.Status, colorize),
					yesNo(segment.PromptApproved),
					truncate(segment.VideoPrompt, 48),
					truncate(segment.ErrorMessage, 32),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Status", "Prompt OK", "Video Prompt", "Error"}, rows))
			return nil
		},
	}
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
