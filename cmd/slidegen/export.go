package main

import (
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Parse slide text and export it as JSON, Markdown, HTML or PowerPoint",
		Long: `Parse a file of generated slide text and export the deck.

Example:
  slidegen export deck.txt --format pptx
  slidegen export deck.txt --format md --output -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			a, err := loadApp(cmd, configDir(path))
			if err != nil {
				return err
			}
			defer a.close()

			format, err := a.exportFormat()
			if err != nil {
				return err
			}

			text, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			deck, err := a.newDeckService(nil).ParseText(cmd.Context(), text, entities.SourceFile)
			if err != nil {
				return err
			}

			return writeDeck(cmd, a, deck, format, output)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Export format: json, markdown, html, pptx (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory, '-' for stdout (default: export.output_dir)")
	cmd.Flags().String("output-dir", "", "Default output directory (overrides config)")

	return cmd
}
