package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/crawler-console/internal/delivery/cli"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/internal/usecase"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List crawlers",
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")
		ctx := context.Background()

		table := page.New()
		list, _, err := newListView(ctx, table, usecase.ListViewOptions{
			EditorURL: cfg.ConsoleBaseURL + "/console/editor",
			Heading:   cli.Heading,
			List:      repository.ListOptions{Offset: offset, Limit: limit, Search: search},
			// A terminal has no footer to re-lay out.
			AfterFunc: func(time.Duration, func()) {},
		})
		if err != nil {
			return err
		}

		if err := list.Initialize(ctx, cli.ViewportHeight(os.Stdout)); err != nil {
			return err
		}
		return out.PrintTable(table.Table(), list.Total())
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a crawler and drop it from the table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		list, _, err := newListView(ctx, page.New(), usecase.ListViewOptions{})
		if err != nil {
			return err
		}
		if err := list.OnRemove(ctx, entityRow(args[0])); err != nil {
			if errors.Is(err, usecase.ErrOperationPending) {
				return err
			}
			// The alert already carries the server's response.
			return errReported
		}
		if jsonOutput {
			return out.PrintJSON(map[string]string{"removed": args[0]})
		}
		fmt.Fprintf(out.Out, "Removed %s\n", args[0])
		return nil
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <index>",
	Short: "Show the detail of a table row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()
		list, _, err := newListView(ctx, page.New(), usecase.ListViewOptions{})
		if err != nil {
			return err
		}

		pane := page.New()
		ok, err := list.ExpandRow(ctx, index, pane)
		if !ok {
			fmt.Fprintf(out.Out, "Row %d has no detail\n", index)
			return nil
		}
		if err != nil {
			return err
		}
		detail, _ := pane.Detail(index)
		return out.PrintDetail(index, detail)
	},
}

func init() {
	listCmd.Flags().Int("offset", 0, "offset for pagination")
	listCmd.Flags().Int("limit", 0, "maximum number of crawlers to return (0 = server default)")
	listCmd.Flags().String("search", "", "filter by crawler name prefix")
}
