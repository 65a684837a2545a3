/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjudge-oj/accounts/config"
	"github.com/jjudge-oj/accounts/internal/mq"
	"github.com/jjudge-oj/accounts/types"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect user lifecycle events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print user events from the configured broker as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		err = broker.Subscribe(ctx, cfg.MQ.UserEventsChannel, printUserEvent(cmd.OutOrStdout()))
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

// printUserEvent writes each decoded event on its own line. Undecodable
// payloads are acknowledged and reported so they are not redelivered forever.
func printUserEvent(w io.Writer) mq.Handler {
	enc := json.NewEncoder(w)
	return func(ctx context.Context, msg mq.Message) error {
		var event types.UserEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			fmt.Fprintf(os.Stderr, "skipping message %s: %v\n", msg.ID, err)
			return nil
		}
		return enc.Encode(event)
	}
}
