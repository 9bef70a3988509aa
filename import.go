package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sitecrew/connection"
	"sitecrew/services"
)

func importCmd(rt *runtime) *cobra.Command {
	var createdBy string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a day's schedule from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readImportFile(args[0])
			if err != nil {
				return err
			}
			app, err := connection.NewApp(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Importer(createdBy).Import(cmd.Context(), req)
			if res != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&createdBy, "as", "", "user id recorded as creator of new projects")
	return cmd
}

// readImportFile decodes an import payload. YAML is a superset of JSON, so
// one decoder serves both formats.
func readImportFile(path string) (services.ImportRequest, error) {
	var req services.ImportRequest
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return req, nil
}
