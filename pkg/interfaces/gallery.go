package interfaces

import (
	"context"
	"io"

	"golang.org/x/net/html"
)

// SiteContext is the slice of the host site generator the gallery expander
// depends on. Paths returned by Path are slash separated and relative to
// OutputFolder.
type SiteContext interface {
	// Path maps a logical reference (kind "gallery" plus a gallery name) to
	// the location of its rendered index file.
	Path(kind, name string) (string, error)
	// OutputFolder returns the root folder the site is rendered into.
	OutputFolder() string
}

// GalleryImage is a single entry of a rendered gallery index.
type GalleryImage struct {
	URL      string `json:"url"`
	URLThumb string `json:"url_thumb"`
	Title    string `json:"title,omitempty"`
	Width    int    `json:"-"`
	Height   int    `json:"-"`
}

// GalleryIndexReader loads the ordered image list embedded in a gallery's
// rendered index page.
type GalleryIndexReader interface {
	ReadIndex(ctx context.Context, file string) ([]GalleryImage, error)
}

// GalleryFragment is the markup produced for one gallery marker.
type GalleryFragment interface {
	Node() *html.Node
	Render(w io.Writer) error
}

// GalleryExpander replaces gallery markers found in already rendered text.
type GalleryExpander interface {
	ExpandText(ctx context.Context, text string, site SiteContext) (string, error)
}
