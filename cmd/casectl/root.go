package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"casedesk/internal/client"
)

type cli struct {
	out     io.Writer
	server  string
	timeout time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "casectl",
		Short:         "Command line client for the casedesk API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.server, "server", "http://localhost:3001", "casedesk server base URL")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "request timeout")

	root.AddCommand(c.chatCmd(), c.filesCmd())
	return root
}

func (c *cli) state() *client.State {
	return client.NewState(client.New(c.server, nil))
}

func (c *cli) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// failed reports the state's error field, which is what a view would show.
func failed(msg string, err error) error {
	if msg == "" {
		return err
	}
	return errors.New(msg)
}

func (c *cli) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
}
