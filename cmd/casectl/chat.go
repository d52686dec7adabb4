package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "List, send and delete chat messages",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show all messages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			if err := state.FetchMessages(ctx); err != nil {
				return failed(state.Snapshot().MessagesStatus.Err, err)
			}
			rows := [][]string{}
			for _, m := range state.Snapshot().Messages {
				rows = append(rows, []string{m.ID, m.Timestamp.Local().Format(time.DateTime), m.Sender, m.Content})
			}
			c.table([]string{"ID", "Time", "Sender", "Content"}, rows)
			return nil
		},
	}

	var sender string
	send := &cobra.Command{
		Use:   "send TEXT...",
		Short: "Append a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			msg, err := state.SendMessage(ctx, sender, strings.Join(args, " "))
			if err != nil {
				return failed(state.Snapshot().MessagesStatus.Err, err)
			}
			fmt.Fprintf(c.out, "sent %s\n", msg.ID)
			return nil
		},
	}
	send.Flags().StringVar(&sender, "sender", "User", "sender name")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a message by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			if err := state.DeleteMessage(ctx, args[0]); err != nil {
				return failed(state.Snapshot().MessagesStatus.Err, err)
			}
			fmt.Fprintf(c.out, "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, send, del)
	return cmd
}
