package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	specform "github.com/goliatone/go-specform"
	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/renderers/tui"
)

func editCmd(load configLoader) *cobra.Command {
	var (
		endpoint   string
		categoryID string
		specsPath  string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a specifications file in the terminal",
		Long: `Prompt for every attribute of a category, pre-filled from a
specifications file, and write the result back. When the category has no
attributes or the lookup fails, the whole document is edited as JSON.

Answer "-" to clear a value.

Examples:
  specform edit --endpoint http://localhost:8080/api/category-attributes --category 7 --file specs.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if categoryID == "" {
				return errors.New("--category is required")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if endpoint == "" {
				endpoint = cfg.Fetch.Endpoint
			}
			logger := cfg.Logger(os.Stderr)

			specs, err := readSpecifications(specsPath)
			if err != nil {
				return err
			}

			f := specform.NewFetcher(
				fetcher.WithEndpoint(endpoint),
				fetcher.WithTimeout(cfg.Fetch.Timeout),
				fetcher.WithContractValidation(cfg.Fetch.ValidateContract),
				fetcher.WithLogger(logger),
			)
			field := controller.NewMemoryField(specs)
			c, err := specform.NewController(f, field,
				controller.WithPolicy(cfg.Policy()),
				controller.WithMessages(cfg.Form.Messages),
				controller.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			editor := tui.New(tui.WithPolicy(cfg.Policy()), tui.WithTheme(tui.Theme{InfoPrefix: "» "}))
			if err := c.SelectCategory(cmd.Context(), categoryID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", cfg.Form.Messages.Error)
			}

			var result string
			switch c.State().Phase {
			case controller.PhaseRendered:
				result, err = editor.Edit(cmd.Context(), c)
			default:
				result, err = editor.EditRaw(cmd.Context(), field.Value())
			}
			if errors.Is(err, tui.ErrAborted) {
				return errors.New("aborted, file left unchanged")
			}
			if err != nil {
				return err
			}
			return writeSpecifications(specsPath, result)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "lookup endpoint base URL (overrides fetch.endpoint)")
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	cmd.Flags().StringVarP(&specsPath, "file", "f", "", "specifications JSON file (stdout when empty)")

	return cmd
}
