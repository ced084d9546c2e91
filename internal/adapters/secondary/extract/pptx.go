// Package extract pulls slide text and images out of uploaded presentations.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"

	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

var (
	// ErrNoSlides is returned when the package contains no slide parts
	ErrNoSlides = errors.New("no slides found in the presentation")

	// ErrNoContent is returned when every slide part failed to parse
	ErrNoContent = errors.New("failed to extract any content from the presentation")

	// ErrInvalidArchive is returned when the upload is not a zip package
	ErrInvalidArchive = errors.New("invalid .pptx file, not a valid ZIP archive")
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// relationshipsXML represents .rels files
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// PPTXExtractor reads .pptx packages
type PPTXExtractor struct {
	sanitizer *bluemonday.Policy
}

// NewPPTXExtractor creates an extractor whose text output is safe to embed in HTML
func NewPPTXExtractor() *PPTXExtractor {
	return &PPTXExtractor{sanitizer: bluemonday.StrictPolicy()}
}

type slideEntry struct {
	number int
	file   *zip.File
}

// Extract returns the text and images of every slide in numeric order.
// Slides that fail to parse are skipped.
func (e *PPTXExtractor) Extract(r io.ReaderAt, size int64) ([]ports.ExtractedSlide, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	files := make(map[string]*zip.File, len(reader.File))
	var entries []slideEntry
	for _, f := range reader.File {
		files[f.Name] = f
		if m := slidePart.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			entries = append(entries, slideEntry{number: n, file: f})
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoSlides
	}

	// slide10 sorts after slide9
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].number < entries[j].number
	})

	slides := make([]ports.ExtractedSlide, 0, len(entries))
	for _, entry := range entries {
		data, err := readZipFile(entry.file)
		if err != nil {
			continue
		}

		text, err := slideText(data)
		if err != nil {
			continue
		}

		slides = append(slides, ports.ExtractedSlide{
			Number: entry.number,
			Text:   e.sanitizer.Sanitize(text),
			Images: slideImages(files, entry.file.Name),
		})
	}

	if len(slides) == 0 {
		return nil, ErrNoContent
	}

	return slides, nil
}

// ExtractFile reads and extracts a .pptx file from disk
func (e *PPTXExtractor) ExtractFile(filePath string) ([]ports.ExtractedSlide, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 - path supplied by the CLI user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("could not read %s: %w", filePath, err)
	}
	return e.Extract(bytes.NewReader(data), int64(len(data)))
}

// slideText joins the text of every <a:t> run with single spaces
func slideText(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var runs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				current.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inText {
				inText = false
				runs = append(runs, current.String())
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(runs, " ")), nil
}

// slideImages loads media referenced from the slide's relationships part
func slideImages(files map[string]*zip.File, slidePath string) []ports.ExtractedImage {
	dir := path.Dir(slidePath)
	relsPath := path.Join(dir, "_rels", path.Base(slidePath)+".rels")

	relsFile, ok := files[relsPath]
	if !ok {
		return nil
	}

	data, err := readZipFile(relsFile)
	if err != nil {
		return nil
	}

	rels := &relationshipsXML{}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil
	}

	var images []ports.ExtractedImage
	for _, rel := range rels.Relationship {
		if !strings.HasSuffix(rel.Type, "/image") {
			continue
		}

		target := resolveTarget(dir, rel.Target)
		f, ok := files[target]
		if !ok {
			continue
		}

		payload, err := readZipFile(f)
		if err != nil {
			continue
		}

		mediaType := mime.TypeByExtension(path.Ext(target))
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}

		images = append(images, ports.ExtractedImage{
			Name:      path.Base(target),
			MediaType: mediaType,
			Data:      payload,
		})
	}

	return images
}

// resolveTarget turns a relationship target into a package part name
func resolveTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(dir, target)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// Ensure PPTXExtractor implements ports.DocumentExtractor
var _ ports.DocumentExtractor = (*PPTXExtractor)(nil)
