package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// jsonContentAssignment is the exact text the gallery generator writes in
// front of the image array inside its index page script.
const jsonContentAssignment = "jsonContent = "

// FileIndexReader reads gallery index pages from the local filesystem.
type FileIndexReader struct{}

// NewFileIndexReader returns a reader for rendered gallery index pages.
func NewFileIndexReader() *FileIndexReader {
	return &FileIndexReader{}
}

var _ interfaces.GalleryIndexReader = (*FileIndexReader)(nil)

// ReadIndex opens file, locates the first script block assigning
// jsonContent and returns its images in index order.
func (r *FileIndexReader) ReadIndex(ctx context.Context, file string) ([]interfaces.GalleryImage, error) {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, notFoundError("", file, err)
	}
	return ParseIndex(file, data)
}

// ParseIndex extracts the image list from the HTML of a gallery index page.
// file is only used to annotate errors.
func ParseIndex(file string, page []byte) ([]interfaces.GalleryImage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, indexFormatError(file, fmt.Sprintf("parse html: %v", err))
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, jsonContentAssignment) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, indexFormatError(file, "no script block assigns jsonContent")
	}

	raw, err := extractImageArray(script)
	if err != nil {
		return nil, indexFormatError(file, err.Error())
	}
	return decodeImages(file, raw)
}

// extractImageArray returns the JSON value assigned to jsonContent. Exactly
// one value is decoded, so a `;` inside a JSON string does not cut the array
// short; for well formed pages this is the text up to the first `;`.
func extractImageArray(script string) (json.RawMessage, error) {
	idx := strings.Index(script, jsonContentAssignment)
	if idx < 0 {
		return nil, fmt.Errorf("jsonContent assignment not found")
	}
	rest := script[idx+len(jsonContentAssignment):]

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(rest)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode jsonContent: %w", err)
	}
	return raw, nil
}

type indexEntry struct {
	URL      string  `json:"url"`
	URLThumb string  `json:"url_thumb"`
	Title    *string `json:"title"`
	Size     *struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"size"`
}

func decodeImages(file string, raw json.RawMessage) ([]interfaces.GalleryImage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, indexFormatError(file, fmt.Sprintf("decode jsonContent: %v", err))
	}
	if err := validateImageArray(payload); err != nil {
		return nil, indexFormatError(file, err.Error())
	}

	var entries []indexEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, indexFormatError(file, fmt.Sprintf("decode images: %v", err))
	}

	images := make([]interfaces.GalleryImage, 0, len(entries))
	for _, entry := range entries {
		image := interfaces.GalleryImage{
			URL:      entry.URL,
			URLThumb: entry.URLThumb,
		}
		if entry.Title != nil {
			image.Title = *entry.Title
		}
		if entry.Size != nil {
			image.Width = int(entry.Size.W)
			image.Height = int(entry.Size.H)
		}
		images = append(images, image)
	}
	return images, nil
}
