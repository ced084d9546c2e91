package ports

import (
	"io"
)

// ExtractedImage is a media file referenced from a slide
type ExtractedImage struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}

// ExtractedSlide holds the text and images pulled out of one slide
type ExtractedSlide struct {
	Number int              `json:"number"`
	Text   string           `json:"text"`
	Images []ExtractedImage `json:"images,omitempty"`
}

// DocumentExtractor pulls slide text and images out of an uploaded document
type DocumentExtractor interface {
	Extract(r io.ReaderAt, size int64) ([]ExtractedSlide, error)
}
