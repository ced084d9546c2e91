package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/config"
)

func newPromptsCmd() *cobra.Command {
	var (
		jsonOut  bool
		initPath string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the prompt templates offered to users",
		Long: `List the prompt catalog served at /api/prompts. The catalog comes from
server.prompts_file when set, otherwise the built-in templates are used.
Use --init to write the built-in catalog to a YAML file for editing.

Example:
  slidegen prompts
  slidegen prompts --init prompts.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initPath != "" {
				if _, err := os.Stat(initPath); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", initPath)
				}
				if err := config.WriteDefaultPrompts(initPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote prompt catalog to %s\n", initPath)
				return nil
			}

			a, err := loadApp(cmd, ".")
			if err != nil {
				return err
			}
			defer a.close()

			prompts, err := a.newPromptCatalog().List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, prompts)
			}

			for _, p := range prompts {
				bold.Fprint(out, p.Category)
				dim.Fprintf(out, "  %s\n", p.Description)
				fmt.Fprintf(out, "  %s\n\n", p.Prompt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output prompts as JSON")
	cmd.Flags().StringVar(&initPath, "init", "", "Write the built-in catalog to this YAML file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file with --init")
	cmd.Flags().String("prompts", "", "Prompt catalog YAML file (overrides config)")

	return cmd
}
