package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

func newParseCmd() *cobra.Command {
	var (
		jsonOut bool
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse generated slide text into slides",
		Long: `Parse loosely structured slide text, as produced by a text-generation
service, into styled slides. Pass '-' to read from stdin.

Example:
  slidegen parse deck.txt
  pbpaste | slidegen parse - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			a, err := loadApp(cmd, configDir(path))
			if err != nil {
				return err
			}
			defer a.close()

			text, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if explain {
				reports, err := a.newParser().Analyze(text)
				if err != nil {
					return err
				}
				printReports(out, reports)
				return nil
			}

			source := entities.SourceFile
			if path == "-" {
				source = entities.SourceText
			}

			deck, err := a.newDeckService(nil).ParseText(cmd.Context(), text, source)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(out, deck)
			}
			printSlides(out, deck.Slides)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output slides as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show how each slide's style and content were derived")

	return cmd
}

// readInput reads path, or stdin when path is "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("accessing input file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("input path is not a regular file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}
