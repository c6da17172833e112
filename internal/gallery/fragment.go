package gallery

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// Classes holds the stylesheet tokens stamped onto a fragment. The defaults
// target a Bootstrap grid: two cells per row on narrow viewports and four on
// wide ones.
type Classes struct {
	ContainerID string
	RowClass    string
	CellClass   string
	LinkClass   string
}

// DefaultClasses returns the tokens used when none are configured.
func DefaultClasses() Classes {
	return Classes{
		ContainerID: "gallery-container",
		RowClass:    "row",
		CellClass:   "col-xs-6 col-md-3",
		LinkClass:   "thumbnail image-reference",
	}
}

// WithDefaults fills empty tokens from DefaultClasses.
func (c Classes) WithDefaults() Classes {
	def := DefaultClasses()
	if strings.TrimSpace(c.ContainerID) == "" {
		c.ContainerID = def.ContainerID
	}
	if strings.TrimSpace(c.RowClass) == "" {
		c.RowClass = def.RowClass
	}
	if strings.TrimSpace(c.CellClass) == "" {
		c.CellClass = def.CellClass
	}
	if strings.TrimSpace(c.LinkClass) == "" {
		c.LinkClass = def.LinkClass
	}
	return c
}

// Cell is one thumbnail link. Href and Thumb are already rooted at the
// gallery folder.
type Cell struct {
	Href  string
	Thumb string
	Title string
}

// Fragment is the expansion of a single marker: a container holding one row
// holding one cell per image, in index order.
type Fragment struct {
	Gallery string
	Classes Classes
	Cells   []Cell
}

var _ interfaces.GalleryFragment = (*Fragment)(nil)

// Node builds a fresh DOM tree for the fragment.
func (f *Fragment) Node() *html.Node {
	classes := f.Classes.WithDefaults()

	container := element(atom.Div, html.Attribute{Key: "id", Val: classes.ContainerID})
	row := element(atom.Div, html.Attribute{Key: "class", Val: classes.RowClass})
	container.AppendChild(row)

	for _, cell := range f.Cells {
		wrapper := element(atom.Div, html.Attribute{Key: "class", Val: classes.CellClass})
		link := element(atom.A,
			html.Attribute{Key: "href", Val: cell.Href},
			html.Attribute{Key: "class", Val: classes.LinkClass},
		)
		attrs := []html.Attribute{{Key: "src", Val: cell.Thumb}}
		if cell.Title != "" {
			attrs = append(attrs, html.Attribute{Key: "alt", Val: cell.Title})
		}
		link.AppendChild(element(atom.Img, attrs...))
		wrapper.AppendChild(link)
		row.AppendChild(wrapper)
	}
	return container
}

// Render serialises the fragment DOM into w.
func (f *Fragment) Render(w io.Writer) error {
	return html.Render(w, f.Node())
}

// HTML returns the serialised fragment.
func (f *Fragment) HTML() (string, error) {
	var b strings.Builder
	if err := f.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}
