package markdown

import (
	"github.com/yuin/goldmark/ast"
)

var (
	// KindGallery is the inline node produced for a `[:gallery: <name>]` marker.
	KindGallery = ast.NewNodeKind("Gallery")
	// KindGalleryContainer wraps the row of an expanded gallery.
	KindGalleryContainer = ast.NewNodeKind("GalleryContainer")
	// KindGalleryRow holds one GalleryCell per image.
	KindGalleryRow = ast.NewNodeKind("GalleryRow")
	// KindGalleryCell holds a single thumbnail link.
	KindGalleryCell = ast.NewNodeKind("GalleryCell")
)

// Gallery is an unexpanded gallery marker. It survives transformation only
// when expansion failed, in which case Err holds the reason and the raw
// marker text is rendered.
type Gallery struct {
	ast.BaseInline
	Name string
	Raw  []byte
	Err  error
}

// NewGallery returns a marker node for the named gallery.
func NewGallery(name string, raw []byte) *Gallery {
	return &Gallery{
		Name: name,
		Raw:  append([]byte(nil), raw...),
	}
}

// Kind implements ast.Node.
func (n *Gallery) Kind() ast.NodeKind { return KindGallery }

// Dump implements ast.Node.
func (n *Gallery) Dump(source []byte, level int) {
	kv := map[string]string{
		"Name": n.Name,
		"Raw":  string(n.Raw),
	}
	if n.Err != nil {
		kv["Err"] = n.Err.Error()
	}
	ast.DumpHelper(n, source, level, kv, nil)
}

// GalleryContainer is the root of an expanded gallery. Block is set when the
// container replaced a paragraph holding nothing but the marker.
type GalleryContainer struct {
	ast.BaseBlock
	Gallery string
	Block   bool
}

// NewGalleryContainer returns an empty container for the named gallery.
func NewGalleryContainer(name string) *GalleryContainer {
	return &GalleryContainer{Gallery: name}
}

// Kind implements ast.Node.
func (n *GalleryContainer) Kind() ast.NodeKind { return KindGalleryContainer }

// Dump implements ast.Node.
func (n *GalleryContainer) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Gallery": n.Gallery}, nil)
}

// GalleryRow is the single row inside a GalleryContainer.
type GalleryRow struct {
	ast.BaseBlock
}

// NewGalleryRow returns an empty row.
func NewGalleryRow() *GalleryRow { return &GalleryRow{} }

// Kind implements ast.Node.
func (n *GalleryRow) Kind() ast.NodeKind { return KindGalleryRow }

// Dump implements ast.Node.
func (n *GalleryRow) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// GalleryCell wraps the link of one image.
type GalleryCell struct {
	ast.BaseBlock
}

// NewGalleryCell returns an empty cell.
func NewGalleryCell() *GalleryCell { return &GalleryCell{} }

// Kind implements ast.Node.
func (n *GalleryCell) Kind() ast.NodeKind { return KindGalleryCell }

// Dump implements ast.Node.
func (n *GalleryCell) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}
