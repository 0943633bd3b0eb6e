package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/usecase"
)

var testCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Run a test crawl and print its result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showResult(usecase.VariantTest, args[0])
	},
}

var viewCmd = &cobra.Command{
	Use:   "view <name>",
	Short: "Print a stored crawler configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showResult(usecase.VariantView, args[0])
	},
}

func showResult(variant usecase.ResultVariant, name string) error {
	p := page.New()
	v := usecase.NewResultViewer(client, variant, p, out, log)
	if err := v.Submit(context.Background(), name); err != nil {
		return errReported
	}
	doc, _ := p.Tree()
	if doc == nil {
		return nil
	}
	return out.PrintTree(doc)
}
