package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

var (
	styleColors = map[entities.SlideStyle]*color.Color{
		entities.StyleTitle:   color.New(color.Bold, color.FgBlue),
		entities.StyleSection: color.New(color.Bold, color.FgMagenta),
		entities.StyleContent: color.New(color.Bold, color.FgCyan),
		entities.StyleQuote:   color.New(color.Bold, color.FgYellow),
		entities.StyleData:    color.New(color.Bold, color.FgGreen),
	}
	bold       = color.New(color.Bold)
	dim        = color.New(color.FgHiBlack)
	titleCaser = cases.Title(language.English)
)

// styleLabel renders "Data (chart)" style labels
func styleLabel(slide entities.Slide) string {
	label := titleCaser.String(string(slide.Style()))
	if subtype, ok := slide.DataSubtype(); ok {
		label += " (" + string(subtype) + ")"
	}
	return label
}

// printSlides writes a human readable listing of slides
func printSlides(w io.Writer, slides []entities.Slide) {
	for i, slide := range slides {
		printSlideHeader(w, i, slide)
		for _, line := range slide.Content() {
			fmt.Fprintf(w, "  %s %s\n", dim.Sprint("•"), line)
		}
		fmt.Fprintln(w)
	}
	dim.Fprintf(w, "--- %d slides ---\n", len(slides))
}

func printSlideHeader(w io.Writer, index int, slide entities.Slide) {
	heading := styleColors[slide.Style()]
	if heading == nil {
		heading = bold
	}
	heading.Fprintf(w, "%d. %s", index+1, slide.Title())
	dim.Fprintf(w, "  [%s]\n", styleLabel(slide))
}

// printReports is printSlides plus where each slide's style and content came from
func printReports(w io.Writer, reports []parser.SlideReport) {
	for i, r := range reports {
		printSlideHeader(w, i, r.Slide)
		dim.Fprintf(w, "   style: %s, data: %s, content: %s\n",
			markerSource(r.StyleLine), markerSource(r.DataLine), r.Tier)
		if r.Fallback {
			dim.Fprintln(w, "   whole document parsed as one slide")
		}
		for _, line := range r.Slide.Content() {
			fmt.Fprintf(w, "  %s %s\n", dim.Sprint("•"), line)
		}
		fmt.Fprintln(w)
	}
	dim.Fprintf(w, "--- %d slides ---\n", len(reports))
}

func markerSource(line int) string {
	if line < 0 {
		return "inferred"
	}
	return fmt.Sprintf("marker on line %d", line+1)
}

// writeJSON pretty prints v
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
