package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage uploaded case documents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			if err := state.FetchFiles(ctx); err != nil {
				return failed(state.Snapshot().FilesStatus.Err, err)
			}
			rows := [][]string{}
			for _, f := range state.Snapshot().Files {
				rows = append(rows, []string{f.Name, strconv.FormatInt(f.Size, 10), f.LastModified.Local().Format(time.DateTime), f.Path})
			}
			c.table([]string{"Name", "Size", "Modified", "Path"}, rows)
			return nil
		},
	}

	var name string
	upload := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			storeAs := name
			if storeAs == "" {
				storeAs = filepath.Base(args[0])
			}

			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			res, err := state.UploadFile(ctx, storeAs, f)
			if err != nil {
				return failed(state.Snapshot().FilesStatus.Err, err)
			}
			fmt.Fprintf(c.out, "uploaded %s -> %s\n", res.FileName, res.FilePath)
			return nil
		},
	}
	upload.Flags().StringVar(&name, "name", "", "store the file under this name")

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			state := c.state()
			if err := state.DeleteFile(ctx, args[0]); err != nil {
				return failed(state.Snapshot().FilesStatus.Err, err)
			}
			fmt.Fprintf(c.out, "deleted %s\n", args[0])
			return nil
		},
	}

	text := &cobra.Command{
		Use:   "text NAME",
		Short: "Print the text layer of a stored PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			res, err := c.state().FileText(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, res.Text)
			return nil
		},
	}

	cmd.AddCommand(list, upload, del, text)
	return cmd
}
