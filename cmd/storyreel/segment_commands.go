package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	segmentCmd := &cobra.Command{
		Use:   "segment",
		Short: "Review and retry individual segments",
	}

	segmentCmd.AddCommand(newSegmentActionCommand(ctx, "approve-prompt",
		"Approve a segment's generated prompt", "Prompt approved; the daemon will pick up generation."))
	segmentCmd.AddCommand(newSegmentActionCommand(ctx, "approve",
		"Approve a generated segment video", "Segment approved."))
	segmentCmd.AddCommand(newSegmentActionCommand(ctx, "regenerate",
		"Discard a generated segment and queue it again", "Segment queued for regeneration."))
	segmentCmd.AddCommand(newSegmentActionCommand(ctx, "retry",
		"Retry a failed segment", "Segment queued for retry."))
	segmentCmd.AddCommand(newSegmentActionCommand(ctx, "cancel",
		"Cancel an in-flight segment generation", "Segment cancelled."))

	return segmentCmd
}

func newSegmentActionCommand(ctx *commandContext, action, short, confirmation string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <project-id> <segment-index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("segment index must be a non-negative integer, got %q", args[1])
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.SegmentAction(cmd.Context(), args[0], index, action); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), confirmation)
			return nil
		},
	}
}
