package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentcore/orchestrator/internal/eventsgateway"
	"github.com/agentcore/orchestrator/internal/models"
)

type runFlags struct {
	conversationID string
	message        string
	priorMessages  string
	listenAddr     string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a new session and run it to completion or suspension",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.conversationID, "conversation", "", "conversation id (generated if empty)")
	cmd.Flags().StringVar(&flags.message, "message", "", "the user's message for this turn (required)")
	cmd.Flags().StringVar(&flags.priorMessages, "prior-messages", "", "a compact rendering of the conversation so far")
	cmd.Flags().StringVar(&flags.listenAddr, "listen", "", "address to serve a WebSocket event stream on (disabled if empty)")
	cmd.MarkFlagRequired("message")
	return cmd
}

func runTurn(cmd *cobra.Command, root *rootFlags, flags *runFlags) error {
	a, err := buildApp(root)
	if err != nil {
		return err
	}

	if flags.listenAddr != "" {
		stop, err := serveEventGateway(a, flags.listenAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	conversationID := flags.conversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	sessionID := uuid.NewString()
	messageID := uuid.NewString()

	session := models.NewSession(sessionID, conversationID, messageID, a.cfg.Agent)
	return driveTurn(cmd.Context(), a, session, flags.message, flags.priorMessages)
}

// serveEventGateway starts the WebSocket event gateway on addr and returns
// a func that shuts it down. Connect to ws://addr/events/stream to watch
// the turn's events live instead of (or in addition to) the terminal log.
func serveEventGateway(a *app, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	gw := eventsgateway.New(a.bus, 0)
	server := eventsgateway.NewServer(gw)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.orchestrator.Logger.Error("event gateway stopped", "error", err)
		}
	}()
	return func() { _ = server.Close() }, nil
}

func driveTurn(ctx context.Context, a *app, session *models.Session, userMessage, priorMessages string) error {
	sub := a.bus.Subscribe()
	defer sub.Close()
	go func() {
		for ev := range sub.C {
			fmt.Printf("[event] %s\n", ev.Type)
		}
	}()

	response, err := a.orchestrator.Run(ctx, session, userMessage, priorMessages, a.callLLM)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	switch session.Phase().Kind {
	case models.PhaseNeedsHumanInput:
		fmt.Printf("session %s suspended: %s\n", session.ID, session.Phase().Question)
	case models.PhaseGuardrailStop:
		fmt.Printf("session %s stopped: %s\n", session.ID, session.Phase().Reason)
	default:
		fmt.Printf("session %s completed: %s\n", session.ID, response)
	}
	return nil
}
