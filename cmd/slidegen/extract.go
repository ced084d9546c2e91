package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/extract"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

func newExtractCmd() *cobra.Command {
	var (
		jsonOut   bool
		imagesDir string
	)

	cmd := &cobra.Command{
		Use:   "extract <file.pptx>",
		Short: "Extract slide text and images from a PowerPoint file",
		Long: `Read a .pptx file and print the text of each slide in order.
Images referenced by slides can be saved with --images.

Example:
  slidegen extract deck.pptx
  slidegen extract deck.pptx --json
  slidegen extract deck.pptx --images ./media`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".pptx") {
				return fmt.Errorf("expected a .pptx file, got %q", path)
			}

			a, err := loadApp(cmd, configDir(path))
			if err != nil {
				return err
			}
			defer a.close()

			slides, err := extract.NewPPTXExtractor().ExtractFile(path)
			if err != nil {
				return err
			}
			a.logger.Debug("extracted slides", "file", path, "slides", len(slides))

			if imagesDir != "" {
				written, err := saveImages(imagesDir, slides)
				if err != nil {
					return err
				}
				dim.Fprintf(cmd.ErrOrStderr(), "saved %d images to %s\n", written, imagesDir)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, slides)
			}

			for _, slide := range slides {
				bold.Fprintf(out, "Slide %d\n", slide.Number)
				fmt.Fprintln(out, slide.Text)
				for _, img := range slide.Images {
					dim.Fprintf(out, "  [image] %s (%s, %d bytes)\n", img.Name, img.MediaType, len(img.Data))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output slides as JSON")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Directory to save slide images into")

	return cmd
}

// saveImages writes every image as slide<N>-<name> under dir
func saveImages(dir string, slides []ports.ExtractedSlide) (int, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, fmt.Errorf("creating image directory: %w", err)
	}

	written := 0
	for _, slide := range slides {
		for _, img := range slide.Images {
			name := fmt.Sprintf("slide%d-%s", slide.Number, filepath.Base(img.Name))
			if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0600); err != nil {
				return written, fmt.Errorf("writing image %s: %w", name, err)
			}
			written++
		}
	}
	return written, nil
}
