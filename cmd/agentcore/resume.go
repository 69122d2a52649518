package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type resumeFlags struct {
	requestID string
	answer    string
}

func newResumeCmd(root *rootFlags) *cobra.Command {
	flags := &resumeFlags{}
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Deliver an answer to a request id from an agent.needs_human_input event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return resumeSession(cmd, root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.requestID, "request-id", "", "the request id carried by the agent.needs_human_input event (required)")
	cmd.Flags().StringVar(&flags.answer, "answer", "", "the human's answer (required)")
	cmd.MarkFlagRequired("request-id")
	cmd.MarkFlagRequired("answer")
	return cmd
}

// resumeSession delivers an answer to a suspended session's human-input
// request.
//
// A single CLI invocation has no durable record of which request id
// belongs to which session once the process that called run exits — the
// one-shot human-input store lives in process memory (spec §4.2). A real
// deployment keeps the orchestrator and its stores alive in one long-lived
// process (the agent.needs_human_input event's request_id is how a caller
// learns what to pass here); this command exercises that same resume path
// against a freshly built app for scripting and local testing. That app's
// human-input store starts empty, so an id issued by another process is
// reported as an unknown request id; the command does not re-create the
// waiting session or its channels.
func resumeSession(cmd *cobra.Command, root *rootFlags, flags *resumeFlags) error {
	a, err := buildApp(root)
	if err != nil {
		return err
	}
	if err := a.humanInput.Resolve(flags.requestID, flags.answer); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	fmt.Printf("delivered answer to request %s\n", flags.requestID)
	return nil
}
