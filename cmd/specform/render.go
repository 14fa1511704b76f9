package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	specform "github.com/goliatone/go-specform"
	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/renderers/html"
	"github.com/goliatone/go-specform/pkg/renderers/tui"
)

func renderCmd(load configLoader) *cobra.Command {
	var (
		endpoint     string
		categoryID   string
		specsPath    string
		rendererName string
		withField    bool
		write        bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the attribute form for a category",
		Long: `Fetch the attribute schema for a category and print the form
pre-filled from a specifications file.

Examples:
  specform render --endpoint http://localhost:8080/api/category-attributes --category 7 --file specs.json
  specform render --category 7 --file specs.json --with-field --write`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			registry, err := specform.NewRegistry(
				[]html.Option{html.WithContainerID(cfg.Form.ContainerID)},
				tui.WithPolicy(cfg.Policy()),
			)
			if err != nil {
				return err
			}

			f := specform.NewFetcher(
				fetcher.WithEndpoint(endpoint),
				fetcher.WithTimeout(cfg.Fetch.Timeout),
				fetcher.WithContractValidation(cfg.Fetch.ValidateContract),
				fetcher.WithLogger(logger),
			)

			req := specform.Request{
				CategoryID:     categoryID,
				Specifications: specs,
				Renderer:       rendererName,
				Options:        render.RenderOptions{Theme: cfg.RendererTheme()},
			}
			if withField {
				req.Options.PersistedField = &render.PersistedField{}
			}

			result, err := specform.Render(cmd.Context(), f, registry, req,
				controller.WithPolicy(cfg.Policy()),
				controller.WithMessages(cfg.Form.Messages),
				controller.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			if result.State.Err != nil {
				logger.Warn("attribute schema unavailable", "category", categoryID, "error", result.State.Err)
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(result.Output)); err != nil {
				return err
			}
			if write && specsPath != "" && result.Specifications != specs {
				return writeSpecifications(specsPath, result.Specifications)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "lookup endpoint base URL (overrides fetch.endpoint)")
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	cmd.Flags().StringVarP(&specsPath, "file", "f", "", "specifications JSON file")
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "html", "renderer name (html, tui)")
	cmd.Flags().BoolVar(&withField, "with-field", false, "include the persisted specifications field")
	cmd.Flags().BoolVar(&write, "write", false, "write the normalized specifications back to --file")

	return cmd
}
