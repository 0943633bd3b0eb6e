package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/crawler-console/internal/adapter/jsonschema"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/usecase"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Show, validate and submit a crawler configuration",
	Long: `Without --file, prints the form value: the stored record when --name is given,
otherwise nothing. --restore prints the template default instead.

With --file (use - for stdin), the file is validated against the crawler schema and,
if valid, submitted: to the update endpoint when --name is given, otherwise to the
create endpoint. The request path always uses the file's own crawler_name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		restore, _ := cmd.Flags().GetBool("restore")
		if file != "" && restore {
			return errors.New("--file and --restore are mutually exclusive")
		}

		var q entity.QueryContext
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			q.Name = &name
		}

		ctx := context.Background()
		p := page.New()
		e := usecase.NewFormEditor(q, client, client, jsonschema.Compiler{}, p, p, editorOptions(), log, m)

		switch {
		case restore:
			if err := e.Restore(ctx); err != nil {
				return err
			}
		case file == "":
			if err := e.Ready(ctx); err != nil {
				_ = out.PrintEditor(e.Mode().String(), p.Value(), p.Indicator())
				return errReported
			}
		default:
			value, err := readValue(file)
			if err != nil {
				return err
			}
			if err := e.LoadSchema(ctx); err != nil {
				return err
			}
			if _, err := e.Change(value); err != nil {
				return err
			}
			if _, err := e.Submit(ctx); err != nil {
				_ = out.PrintEditor(e.Mode().String(), nil, p.Indicator())
				return errReported
			}
			return out.PrintEditor(e.Mode().String(), nil, p.Indicator())
		}
		return out.PrintEditor(e.Mode().String(), p.Value(), p.Indicator())
	},
}

func readValue(file string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading form value: %w", err)
	}
	return data, nil
}

func init() {
	editCmd.Flags().String("name", "", "crawler to edit; switches the editor to update mode")
	editCmd.Flags().StringP("file", "f", "", "JSON form value to validate and submit (- for stdin)")
	editCmd.Flags().Bool("restore", false, "print the template default value")
}
