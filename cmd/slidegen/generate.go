package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

func newGenerateCmd() *cobra.Command {
	var (
		output  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a deck from a prompt and export it",
		Long: `Send a prompt to the configured text-generation service, parse the reply
into slides and export the deck. Use --output - to write to stdout.

Example:
  slidegen generate "Quarterly sales review for the board"
  slidegen generate "Product launch plan" --format html --output launch.html
  slidegen generate "SEO strategy" --provider openai --model gpt-4o`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt cannot be empty")
			}

			a, err := loadApp(cmd, ".")
			if err != nil {
				return err
			}
			defer a.close()

			format, err := a.exportFormat()
			if err != nil {
				return err
			}

			gen, err := a.newGenerator()
			if err != nil {
				return err
			}

			a.logger.Info("generating deck", "provider", gen.Name(), "format", string(format))

			deck, err := a.newDeckService(gen).Generate(cmd.Context(), entities.Conversation{
				{Role: entities.RoleUser, Content: prompt},
			})
			if err != nil {
				return err
			}

			if preview {
				printSlides(cmd.ErrOrStderr(), deck.Slides)
			}

			return writeDeck(cmd, a, deck, format, output)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Export format: json, markdown, html, pptx (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory, '-' for stdout (default: export.output_dir)")
	cmd.Flags().String("output-dir", "", "Default output directory (overrides config)")
	cmd.Flags().String("provider", "", "Generator provider: anthropic, openai, mock (overrides config)")
	cmd.Flags().String("model", "", "Model name (overrides config)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the parsed slides to stderr")

	return cmd
}

// writeDeck exports deck to output, stdout for "-", or the configured output directory
func writeDeck(cmd *cobra.Command, a *app, deck *entities.Deck, format export.ExportFormat, output string) error {
	exporter := a.newExporter()

	if output == "-" {
		var buf bytes.Buffer
		if err := exporter.Export(cmd.Context(), deck, string(format), &buf); err != nil {
			return err
		}
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if output == "" {
		name, err := exporter.FileName(deck, string(format))
		if err != nil {
			return err
		}
		output = filepath.Join(a.cfg.Export.GetOutputDir(), name)
	}

	result, err := exporter.ExportToFile(cmd.Context(), deck, &export.ExportOptions{
		Format:     format,
		OutputPath: filepath.Clean(output),
	})
	if err != nil {
		return err
	}

	a.logger.Debug("export finished", "duration", result.Duration, "bytes", result.FileSize)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d slides, %s)\n",
		color.GreenString("Wrote"), result.OutputPath, result.SlideCount, result.Format)
	return nil
}
